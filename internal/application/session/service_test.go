package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-rentals-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) Put(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLogin_WithUsername(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	u := &domain.User{UserID: "u1", Username: "ana", Role: domain.RoleUser, Enable: true, PasswordHash: hashOf(t, "pw-123456")}
	users.On("GetByUsername", mock.Anything, "ana").Return(u, nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	events.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	result, err := svc.Login(context.Background(), LoginRequest{Username: "ana", Password: "pw-123456"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", result.Bearer)
	assert.NotEmpty(t, result.RefreshToken)
	events.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
		return e.Type == domain.EventLogin && e.UserID == "u1"
	}))
}

func TestLogin_WithEmailFallback(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	u := &domain.User{UserID: "u1", Email: "ana@example.com", Role: domain.RoleUser, Enable: true, PasswordHash: hashOf(t, "pw-123456")}
	users.On("GetByUsername", mock.Anything, "ana@example.com").Return(nil, domain.ErrNotFound)
	users.On("GetByEmail", mock.Anything, "ana@example.com").Return(u, nil)
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	events.On("Put", mock.Anything, mock.Anything).Return(nil)
	jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ana@example.com", Password: "pw-123456"})
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	u := &domain.User{UserID: "u1", Username: "ana", Enable: true, PasswordHash: hashOf(t, "pw-123456")}
	users.On("GetByUsername", mock.Anything, "ana").Return(u, nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ana", Password: "wrong"})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_DisabledAccount(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	u := &domain.User{UserID: "u1", Username: "ana", Enable: false, PasswordHash: hashOf(t, "pw-123456")}
	users.On("GetByUsername", mock.Anything, "ana").Return(u, nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	_, err := svc.Login(context.Background(), LoginRequest{Username: "ana", Password: "pw-123456"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	sess := &domain.Session{SessionID: "s1", UserID: "u1", Enable: true, RefreshToken: "old", RefreshExpiresAt: time.Now().Add(time.Hour).Unix()}
	sessions.On("GetByRefreshToken", mock.Anything, "old").Return(sess, nil)
	sessions.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleUser}, nil)
	jwt.On("Sign", "u1", domain.RoleUser, "s1").Return("new-bearer", nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	bearer, newToken, err := svc.Refresh(context.Background(), "old")
	require.NoError(t, err)

	assert.Equal(t, "new-bearer", bearer)
	assert.NotEqual(t, "old", newToken)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	sess := &domain.Session{SessionID: "s1", UserID: "u1", RefreshToken: "old", RefreshExpiresAt: time.Now().Add(-time.Hour).Unix()}
	sessions.On("GetByRefreshToken", mock.Anything, "old").Return(sess, nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	_, _, err := svc.Refresh(context.Background(), "old")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCurrent_DisabledSession(t *testing.T) {
	users := &mockUserStore{}
	sessions := &mockSessionStore{}
	events := &mockEventStore{}
	jwt := &mockJWTSigner{}

	sessions.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false}, nil)

	svc := NewService(sessions, users, events, jwt, 30*24*time.Hour)
	_, err := svc.GetCurrent(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
