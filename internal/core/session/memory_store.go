package session

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps sessions in an in-process LRU with a fixed time-to-live.
// Entries are copied on the way in and out, so callers never share a Context.
type MemoryStore struct {
	mu    sync.Mutex // orders Update against Delete
	cache *expirable.LRU[string, Context]
}

// NewMemoryStore returns a store holding at most size sessions for ttl each.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, Context](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Context, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Context) error {
	s.cache.Add(sess.ID, *sess)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, sess *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cache.Contains(sess.ID) {
		return ErrSessionNotFound
	}
	s.cache.Add(sess.ID, *sess)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
	return nil
}
