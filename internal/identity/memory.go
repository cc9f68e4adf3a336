package identity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for dev and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
	seq   map[string]int
	next  int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User), seq: make(map[string]int)}
}

func (m *MemoryStore) emailTaken(email, exceptID string) bool {
	for id, u := range m.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (m *MemoryStore) Create(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = NormalizeEmail(u.Email)
	if m.emailTaken(u.Email, "") {
		return User{}, ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	m.next++
	m.seq[u.ID] = m.next
	return u, nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemoryStore) List(_ context.Context) ([]User, error) {
	m.mu.RLock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	seq := make(map[string]int, len(m.seq))
	for k, v := range m.seq {
		seq[k] = v
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return seq[out[i].ID] > seq[out[j].ID]
	})
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.users[u.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Email = NormalizeEmail(u.Email)
	if m.emailTaken(u.Email, u.ID) {
		return User{}, ErrEmailTaken
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	delete(m.seq, id)
	return nil
}
