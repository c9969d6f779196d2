package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"
	"fittrack/fitness-tracker/internal/service"
)

// State of one authentication session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated-with-profile"
	StateNoProfile       State = "authenticated-no-profile"
)

// Credential is the auth layer's notification payload: a verified
// identity, before any profile lookup.
type Credential struct {
	UID   string
	Email string
}

// Manager is the session/role bootstrap. It reacts to auth-state changes:
// provisions a profile document on first sign-in, stamps last-login on
// subsequent ones, and keeps a live watch on the profile so out-of-band
// changes (an admin flipping this user's role) propagate without
// re-authentication.
//
// The mirrored role flag is a fast, non-authoritative copy for route
// guards; the authoritative role always lives on the profile document.
// A Manager is constructed at startup and injected where needed; there is
// no package-level session state.
type Manager struct {
	users    repository.UserRepository
	activity service.ActivityService

	mu      sync.RWMutex
	state   State
	profile *domain.User
	role    domain.Role

	watchCancel context.CancelFunc
	subs        map[int]chan State
	nextSub     int
}

// NewManager creates a Manager in the unauthenticated state.
func NewManager(users repository.UserRepository, activity service.ActivityService) *Manager {
	return &Manager{
		users:    users,
		activity: activity,
		state:    StateUnauthenticated,
		subs:     make(map[int]chan State),
	}
}

// HandleAuthStateChanged drives the state machine. A nil credential is a
// sign-out; a non-nil one moves through authenticating into one of the
// authenticated states.
func (m *Manager) HandleAuthStateChanged(ctx context.Context, cred *Credential) {
	if cred == nil {
		m.signOut()
		return
	}

	m.setState(StateAuthenticating, nil)

	profile, err := m.users.GetByUID(ctx, cred.UID)
	switch {
	case err == nil:
		// Known user: stamp last login only.
		if stampErr := m.users.SetLastLogin(ctx, cred.UID); stampErr != nil {
			log.Printf("WARN: failed to stamp last login for %s: %v", cred.UID, stampErr)
		}
	case errors.Is(err, repository.ErrNotFound):
		// First observation of this credential: provision a profile with
		// the default role.
		profile, err = m.provision(ctx, cred)
		if err != nil {
			log.Printf("ERROR: profile provisioning failed for %s: %v", cred.UID, err)
			m.setState(StateNoProfile, nil)
			return
		}
	default:
		log.Printf("ERROR: profile fetch failed for %s: %v", cred.UID, err)
		m.setState(StateNoProfile, nil)
		return
	}

	m.setState(StateAuthenticated, profile)
	m.startWatch(cred.UID)
}

func (m *Manager) provision(ctx context.Context, cred *Credential) (*domain.User, error) {
	profile := &domain.User{
		UID:    cred.UID,
		Email:  cred.Email,
		Role:   domain.RoleUser,
		Status: domain.UserStatusActive,
	}
	if _, err := m.users.Create(ctx, profile); err != nil {
		return nil, err
	}
	m.activity.Record(cred.UID, domain.ActionCreate, "users", cred.UID, map[string]any{
		"provisioned": true,
	})
	return profile, nil
}

// startWatch subscribes to live profile changes for the signed-in user.
// Stores without change-stream support degrade to a static profile; the
// session still works, role changes just need a fresh sign-in.
func (m *Manager) startWatch(uid string) {
	m.stopWatch()

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := m.users.WatchByUID(ctx, uid)
	if err != nil {
		cancel()
		if !errors.Is(err, repository.ErrWatchUnsupported) {
			log.Printf("WARN: profile watch unavailable for %s: %v", uid, err)
		}
		return
	}

	m.mu.Lock()
	m.watchCancel = cancel
	m.mu.Unlock()

	go func() {
		for profile := range updates {
			p := profile
			m.setState(StateAuthenticated, &p)
		}
	}()
}

func (m *Manager) stopWatch() {
	m.mu.Lock()
	cancel := m.watchCancel
	m.watchCancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *Manager) signOut() {
	m.stopWatch()
	m.setState(StateUnauthenticated, nil)
}

func (m *Manager) setState(state State, profile *domain.User) {
	m.mu.Lock()
	m.state = state
	m.profile = profile
	if profile != nil {
		m.role = profile.Role
	} else {
		m.role = ""
	}
	subs := make([]chan State, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Profile returns the live profile, or nil outside the
// authenticated-with-profile state.
func (m *Manager) Profile() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return nil
	}
	p := *m.profile
	return &p
}

// Role returns the mirrored role flag. Non-authoritative: use the profile
// document when it matters.
func (m *Manager) Role() domain.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role
}

// Subscribe returns a channel receiving every state transition, and a
// cancel function. Slow consumers miss intermediate states rather than
// blocking the manager.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 4)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
