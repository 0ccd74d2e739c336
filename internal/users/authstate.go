package users

import "sync"

// AuthState describes the active identity. An empty UserID means signed
// out.
type AuthState struct {
	UserID string
	Email  string
}

// SignedIn reports whether an identity is active.
func (s AuthState) SignedIn() bool {
	return s.UserID != ""
}

// StatePublisher turns auth changes into an explicit event stream the
// cart, favorites and checkout engines subscribe to for re-seeding.
// Subscriber channels are buffered; a subscriber that stops draining
// loses intermediate states but always receives the latest one.
type StatePublisher struct {
	mu      sync.Mutex
	current AuthState
	subs    map[int]chan AuthState
	nextID  int
}

func NewStatePublisher() *StatePublisher {
	return &StatePublisher{subs: make(map[int]chan AuthState)}
}

// Current returns the last published state.
func (p *StatePublisher) Current() AuthState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers a listener. The returned cancel func must be
// called when the listener goes away.
func (p *StatePublisher) Subscribe() (<-chan AuthState, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan AuthState, 8)
	p.subs[id] = ch

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish records the new state and fans it out. A subscriber with a
// full buffer has its oldest pending state dropped in favor of the new
// one.
func (p *StatePublisher) Publish(state AuthState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = state
	for _, ch := range p.subs {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
