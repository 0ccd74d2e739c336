package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fbauth "firebase.google.com/go/v4/auth"
)

func receive(t *testing.T, ch <-chan AuthState) AuthState {
	t.Helper()
	select {
	case state := <-ch:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("no auth state received")
		return AuthState{}
	}
}

func TestPublisherFansOutToSubscribers(t *testing.T) {
	publisher := NewStatePublisher()
	first, cancelFirst := publisher.Subscribe()
	second, cancelSecond := publisher.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	publisher.Publish(AuthState{UserID: "uid-1", Email: "max@example.com"})

	assert.Equal(t, "uid-1", receive(t, first).UserID)
	assert.Equal(t, "uid-1", receive(t, second).UserID)
	assert.True(t, publisher.Current().SignedIn())
}

func TestPublisherSlowSubscriberKeepsLatestState(t *testing.T) {
	publisher := NewStatePublisher()
	ch, cancel := publisher.Subscribe()
	defer cancel()

	for i := 0; i < 20; i++ {
		publisher.Publish(AuthState{UserID: "uid-old"})
	}
	publisher.Publish(AuthState{UserID: "uid-latest"})

	var last AuthState
	for {
		select {
		case state := <-ch:
			last = state
			continue
		default:
		}
		break
	}
	assert.Equal(t, "uid-latest", last.UserID)
}

func TestCancelStopsDelivery(t *testing.T) {
	publisher := NewStatePublisher()
	ch, cancel := publisher.Subscribe()
	cancel()

	publisher.Publish(AuthState{UserID: "uid-1"})

	_, open := <-ch
	assert.False(t, open)
}

type stubAuthClient struct {
	identity Identity
	err      error
}

func (s *stubAuthClient) SignIn(context.Context, string, string) (Identity, error) {
	return s.identity, s.err
}

func (s *stubAuthClient) SignUp(context.Context, string, string) (Identity, error) {
	return s.identity, s.err
}

type stubAdmin struct {
	revoked []string
}

func (s *stubAdmin) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return nil, nil
}

func (s *stubAdmin) RevokeRefreshTokens(_ context.Context, uid string) error {
	s.revoked = append(s.revoked, uid)
	return nil
}

func TestLoginPublishesIdentity(t *testing.T) {
	auth := &stubAuthClient{identity: Identity{UID: "uid-1", Email: "max@example.com"}}
	repo := NewStoreRepository(auth, nil, nil, nil, nil)
	ch, cancel := repo.States().Subscribe()
	defer cancel()

	identity, err := repo.Login(context.Background(), "max@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.UID)
	assert.Equal(t, "uid-1", receive(t, ch).UserID)
}

func TestSignOutRevokesTokensAndPublishesSignedOut(t *testing.T) {
	auth := &stubAuthClient{identity: Identity{UID: "uid-1"}}
	admin := &stubAdmin{}
	repo := NewStoreRepository(auth, admin, nil, nil, nil)

	_, err := repo.Login(context.Background(), "max@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, repo.SignOut(context.Background()))

	assert.Equal(t, []string{"uid-1"}, admin.revoked)
	assert.False(t, repo.States().Current().SignedIn())
}
