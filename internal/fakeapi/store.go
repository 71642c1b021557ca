package fakeapi

import (
	"maps"
	"slices"
	"sync"

	"github.com/adamwoolhether/httpspec/users"
)

// store is an in-memory user table.
type store struct {
	mu     sync.RWMutex
	users  map[int]users.User
	nextID int
}

func newStore(seed []users.User) *store {
	s := store{users: make(map[int]users.User, len(seed))}
	for _, u := range seed {
		s.users[u.ID] = u
		s.nextID = max(s.nextID, u.ID)
	}

	return &s
}

func (s *store) list() []users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.users))
	out := make([]users.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.users[id])
	}

	return out
}

func (s *store) get(id int) (users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	return u, ok
}

func (s *store) create(u users.User) users.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u

	return u
}

// update runs fn on the stored user and saves its result.
func (s *store) update(id int, fn func(users.User) users.User) (users.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return users.User{}, false
	}

	u = fn(u)
	u.ID = id
	s.users[id] = u

	return u, true
}

func (s *store) delete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
}
