package users

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/phermann/shopcore/pkg/docstore"
	pkgerrors "github.com/phermann/shopcore/pkg/errors"
	"github.com/phermann/shopcore/pkg/logger"
	"github.com/phermann/shopcore/pkg/models"
)

// Repository covers the user-facing identity operations: profile lookup,
// login, registration, sign-out.
type Repository interface {
	// GetByID loads the profile document for an identity. It fails with
	// a not-found error when the identity exists but the profile
	// document was never created, which callers treat as a recoverable
	// state by re-creating the profile.
	GetByID(ctx context.Context, id string) (models.Profile, error)
	Login(ctx context.Context, email, password string) (Identity, error)
	Register(ctx context.Context, email, password, fullName string) (Identity, error)
	CreateProfile(ctx context.Context, id string, profile models.Profile) error
	SignOut(ctx context.Context) error
}

// StoreRepository pairs the credential provider with the profile
// documents in the users collection and publishes auth state changes for
// the engines to re-seed from.
type StoreRepository struct {
	auth   AuthClient
	admin  AdminAuth
	store  *docstore.Client
	states *StatePublisher
	logg   *logger.Logger
}

func NewStoreRepository(auth AuthClient, admin AdminAuth, store *docstore.Client, states *StatePublisher, logg *logger.Logger) *StoreRepository {
	if states == nil {
		states = NewStatePublisher()
	}
	return &StoreRepository{auth: auth, admin: admin, store: store, states: states, logg: logg}
}

// States exposes the auth state stream.
func (r *StoreRepository) States() *StatePublisher {
	return r.states
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return models.Profile{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	snap, err := r.store.User(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.Profile{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("profile %s not found", id))
	}
	if err != nil {
		return models.Profile{}, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "load profile")
	}
	if !snap.Exists() {
		return models.Profile{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("profile %s not found", id))
	}

	return docstore.DecodeProfile(snap.Data()), nil
}

// Login authenticates the credentials and publishes the new identity.
func (r *StoreRepository) Login(ctx context.Context, email, password string) (Identity, error) {
	if err := ValidateLogin(email, password); err != nil {
		return Identity{}, err
	}

	identity, err := r.auth.SignIn(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}

	r.states.Publish(AuthState{UserID: identity.UID, Email: identity.Email})
	return identity, nil
}

// Register creates the credential identity, then the profile document.
// When the profile write fails the identity still exists; the error is
// surfaced and the identity is published anyway, so the next profile
// fetch reports not-found and the profile can be re-created.
func (r *StoreRepository) Register(ctx context.Context, email, password, fullName string) (Identity, error) {
	if err := ValidateRegistration(fullName, email, password); err != nil {
		return Identity{}, err
	}

	identity, err := r.auth.SignUp(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}

	r.states.Publish(AuthState{UserID: identity.UID, Email: identity.Email})

	profile := models.Profile{FullName: fullName, Email: email}
	if err := r.CreateProfile(ctx, identity.UID, profile); err != nil {
		if r.logg != nil {
			r.logg.Error(r.logg.WithUserID(ctx, identity.UID), "create profile after registration", err)
		}
		return identity, err
	}
	return identity, nil
}

// CreateProfile writes the profile document, also used to repair a
// registration whose profile write failed.
func (r *StoreRepository) CreateProfile(ctx context.Context, id string, profile models.Profile) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	_, err := r.store.User(id).Set(ctx, docstore.EncodeProfile(profile), firestore.MergeAll)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "create profile")
	}
	return nil
}

// SignOut revokes the active identity's refresh tokens when an admin
// client is wired, then publishes the signed-out state.
func (r *StoreRepository) SignOut(ctx context.Context) error {
	current := r.states.Current()
	if r.admin != nil && current.SignedIn() {
		if err := r.admin.RevokeRefreshTokens(ctx, current.UserID); err != nil && r.logg != nil {
			r.logg.Error(r.logg.WithUserID(ctx, current.UserID), "revoke refresh tokens", err)
		}
	}

	r.states.Publish(AuthState{})
	return nil
}
