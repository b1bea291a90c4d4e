package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/sheet_dashboard/internal/core/ports/repositories"
)

// UserStore keeps users and their password-reset tokens behind one mutex.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User // by user id
	byName  map[string]string      // username -> user id
	byEmail map[string]string      // lower(email) -> user id
	tokens  map[string]domain.PasswordResetToken
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:   map[string]domain.User{},
		byName:  map[string]string{},
		byEmail: map[string]string{},
		tokens:  map[string]domain.PasswordResetToken{},
	}
}

var (
	_ portsrepo.UserRepositoryFacade          = (*UserStore)(nil)
	_ portsrepo.PasswordResetRepositoryFacade = (*UserStore)(nil)
)

func (s *UserStore) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.byName[user.Username]; taken {
		return apperrors.ErrDuplicateUser
	}
	if _, taken := s.byEmail[email]; taken {
		return apperrors.ErrDuplicateUser
	}
	s.users[user.UserID] = user
	s.byName[user.Username] = user.UserID
	s.byEmail[email] = user.UserID
	return nil
}

func (s *UserStore) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(userID, true)
}

func (s *UserStore) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[username]
	return s.lookup(id, ok)
}

func (s *UserStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	return s.lookup(id, ok)
}

// lookup must be called with the lock held.
func (s *UserStore) lookup(id string, ok bool) (*domain.User, error) {
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) SaveResetToken(_ context.Context, token domain.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.TokenHash] = token
	return nil
}

func (s *UserStore) FindResetToken(_ context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (s *UserStore) ConsumeResetToken(_ context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenHash]
	if !ok || !t.Usable(now) {
		return "", apperrors.ErrInvalidOrExpiredToken
	}
	u, ok := s.users[t.UserID]
	if !ok {
		return "", apperrors.ErrInvalidOrExpiredToken
	}

	usedAt := now
	t.UsedAt = &usedAt
	s.tokens[tokenHash] = t

	u.PasswordHash = newPasswordHash
	u.LastUpdatedAt = now
	s.users[u.UserID] = u
	return u.UserID, nil
}
