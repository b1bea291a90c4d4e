package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/sheet_dashboard/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock SettingsRepository ---
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) FindSettings(ctx context.Context, userID, pageID string) ([]byte, error) {
	args := m.Called(ctx, userID, pageID)
	var payload []byte
	if args.Get(0) != nil {
		payload = args.Get(0).([]byte)
	}
	return payload, args.Error(1)
}

func (m *MockSettingsRepository) UpsertSettings(ctx context.Context, userID, pageID string, payload []byte) error {
	args := m.Called(ctx, userID, pageID, payload)
	return args.Error(0)
}

func (m *MockSettingsRepository) ListSettings(ctx context.Context, userID string) (map[string][]byte, error) {
	args := m.Called(ctx, userID)
	var out map[string][]byte
	if args.Get(0) != nil {
		out = args.Get(0).(map[string][]byte)
	}
	return out, args.Error(1)
}

// --- Mock UserRepository (Fn overrides take precedence over recorded calls) ---
type MockUserRepository struct {
	mock.Mock
	FindUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}
	args := m.Called(ctx, username)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func userOrNil(v any) *domain.User {
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}

// --- Mock SheetSource ---
type MockSheetSource struct {
	mock.Mock
	delay time.Duration
}

func (m *MockSheetSource) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	args := m.Called(ctx, spreadsheetID)
	var titles []string
	if args.Get(0) != nil {
		titles = args.Get(0).([]string)
	}
	return titles, args.Error(1)
}

func (m *MockSheetSource) ReadRange(ctx context.Context, spreadsheetID, rangeA1 string) ([][]string, error) {
	args := m.Called(ctx, spreadsheetID, rangeA1)
	var values [][]string
	if args.Get(0) != nil {
		values = args.Get(0).([][]string)
	}
	return values, args.Error(1)
}
