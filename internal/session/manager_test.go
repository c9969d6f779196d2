package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo is an in-memory UserRepository. watch, when set, backs
// WatchByUID; otherwise watches report unsupported.
type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	getErr     error
	lastLogins map[string]int
	watch      chan domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[string]*domain.User),
		lastLogins: make(map[string]int),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = primitive.NewObjectID()
	stored := *user
	r.users[user.UID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, uid string, fields bson.M) error {
	return nil
}

func (r *fakeUserRepo) SetLastLogin(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLogins[uid]++
	return nil
}

func (r *fakeUserRepo) SetRole(ctx context.Context, uid string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) WatchByUID(ctx context.Context, uid string) (<-chan domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watch == nil {
		return nil, repository.ErrWatchUnsupported
	}
	return r.watch, nil
}

func (r *fakeUserRepo) lastLoginCount(uid string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastLogins[uid]
}

// recordingActivity captures audit records for assertions.
type recordingActivity struct {
	mu      sync.Mutex
	actions []domain.ActivityAction
}

func (a *recordingActivity) Record(userID string, action domain.ActivityAction, resourceType, resourceID string, details map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
}

func (a *recordingActivity) GetUserActivity(context.Context, string, int64) ([]domain.ActivityLog, error) {
	return nil, nil
}

func (a *recordingActivity) GetRecentActivity(context.Context, int64) ([]domain.ActivityLog, error) {
	return nil, nil
}

func (a *recordingActivity) recorded() []domain.ActivityAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ActivityAction, len(a.actions))
	copy(out, a.actions)
	return out
}

func TestManagerBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("starts unauthenticated", func(t *testing.T) {
		m := NewManager(newFakeUserRepo(), &recordingActivity{})
		assert.Equal(t, StateUnauthenticated, m.State())
		assert.Nil(t, m.Profile())
	})

	t.Run("known credential loads the profile and stamps last login", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.users["u1"] = &domain.User{UID: "u1", Email: "a@b.c", Role: domain.RoleCoach}
		activity := &recordingActivity{}
		m := NewManager(repo, activity)

		m.HandleAuthStateChanged(ctx, &Credential{UID: "u1", Email: "a@b.c"})

		assert.Equal(t, StateAuthenticated, m.State())
		require.NotNil(t, m.Profile())
		assert.Equal(t, domain.RoleCoach, m.Role(), "the mirrored role follows the profile")
		assert.Equal(t, 1, repo.lastLoginCount("u1"))
		assert.Empty(t, activity.recorded(), "a routine sign-in is not a provisioning event")
	})

	t.Run("first credential provisions a default-role profile", func(t *testing.T) {
		repo := newFakeUserRepo()
		activity := &recordingActivity{}
		m := NewManager(repo, activity)

		m.HandleAuthStateChanged(ctx, &Credential{UID: "new-uid", Email: "new@b.c"})

		assert.Equal(t, StateAuthenticated, m.State())
		profile := m.Profile()
		require.NotNil(t, profile)
		assert.Equal(t, domain.RoleUser, profile.Role, "provisioned profiles start with the regular role")
		assert.Equal(t, "new@b.c", profile.Email)
		assert.Equal(t, []domain.ActivityAction{domain.ActionCreate}, activity.recorded())

		stored, err := repo.GetByUID(ctx, "new-uid")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, stored.Role)
	})

	t.Run("profile fetch failure lands in the no-profile state", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.getErr = errors.New("connection reset")
		m := NewManager(repo, &recordingActivity{})

		m.HandleAuthStateChanged(ctx, &Credential{UID: "u1"})

		assert.Equal(t, StateNoProfile, m.State())
		assert.Nil(t, m.Profile())
	})

	t.Run("nil credential signs out", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.users["u1"] = &domain.User{UID: "u1", Role: domain.RoleUser}
		m := NewManager(repo, &recordingActivity{})

		m.HandleAuthStateChanged(ctx, &Credential{UID: "u1"})
		require.Equal(t, StateAuthenticated, m.State())

		m.HandleAuthStateChanged(ctx, nil)
		assert.Equal(t, StateUnauthenticated, m.State())
		assert.Nil(t, m.Profile())
		assert.Equal(t, domain.Role(""), m.Role())
	})
}

func TestManagerProfileWatch(t *testing.T) {
	ctx := context.Background()

	t.Run("role changes propagate through the watch", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.users["u1"] = &domain.User{UID: "u1", Role: domain.RoleUser}
		repo.watch = make(chan domain.User, 1)
		m := NewManager(repo, &recordingActivity{})

		m.HandleAuthStateChanged(ctx, &Credential{UID: "u1"})
		require.Equal(t, domain.RoleUser, m.Role())

		repo.watch <- domain.User{UID: "u1", Role: domain.RoleAdmin}

		require.Eventually(t, func() bool {
			return m.Role() == domain.RoleAdmin
		}, time.Second, 10*time.Millisecond, "the mirrored role must follow the live profile")
		assert.Equal(t, StateAuthenticated, m.State())
	})

	t.Run("a store without watch support degrades gracefully", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.users["u1"] = &domain.User{UID: "u1", Role: domain.RoleUser}
		m := NewManager(repo, &recordingActivity{})

		m.HandleAuthStateChanged(ctx, &Credential{UID: "u1"})
		assert.Equal(t, StateAuthenticated, m.State())
	})
}

func TestManagerSubscribe(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = &domain.User{UID: "u1", Role: domain.RoleUser}
	m := NewManager(repo, &recordingActivity{})

	ch, cancel := m.Subscribe()
	defer cancel()

	m.HandleAuthStateChanged(context.Background(), &Credential{UID: "u1"})

	var seen []State
	timeout := time.After(time.Second)
	for len(seen) < 2 {
		select {
		case s := <-ch:
			seen = append(seen, s)
		case <-timeout:
			t.Fatalf("timed out; transitions seen: %v", seen)
		}
	}
	assert.Equal(t, []State{StateAuthenticating, StateAuthenticated}, seen)
}
