package auth

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-rentals-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.UserVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	args := m.Called(ctx, userID, verType)
	if v, _ := args.Get(0).(*domain.UserVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Delete(ctx context.Context, userID, verType string) error {
	return m.Called(ctx, userID, verType).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type fixture struct {
	verifications *mockVerificationStore
	users         *mockUserStore
	sessions      *mockSessionStore
	mailer        *mockMailer
	jwt           *mockJWTSigner
	svc           Service
}

func newFixture() *fixture {
	f := &fixture{
		verifications: &mockVerificationStore{},
		users:         &mockUserStore{},
		sessions:      &mockSessionStore{},
		mailer:        &mockMailer{},
		jwt:           &mockJWTSigner{},
	}
	f.svc = NewService(f.verifications, f.users, f.sessions, f.mailer, f.jwt, 30*24*time.Hour)
	return f
}

func TestRequestPasswordRecovery_MailsOTP(t *testing.T) {
	f := newFixture()
	u := &domain.User{UserID: "u1", Email: "ana@example.com", Enable: true}
	f.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(u, nil)
	f.verifications.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.UserVerification) bool {
		return v.UserID == "u1" && v.Type == "otp" && len(v.Code) == 6
	})).Return(nil)
	f.mailer.On("SendEmail", "ana@example.com", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RequestPasswordRecovery(context.Background(), PasswordRecoveryRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	f.mailer.AssertExpectations(t)
}

func TestRequestPasswordRecovery_UnknownEmail(t *testing.T) {
	f := newFixture()
	f.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	err := f.svc.RequestPasswordRecovery(context.Background(), PasswordRecoveryRequest{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateOTP_HappyPath(t *testing.T) {
	f := newFixture()
	u := &domain.User{UserID: "u1", Email: "ana@example.com", Role: domain.RoleUser, Enable: true}
	f.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(u, nil)
	f.verifications.On("Get", mock.Anything, "u1", "otp").Return(&domain.UserVerification{
		UserID: "u1", Type: "otp", Code: "123456", ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)
	f.verifications.On("Delete", mock.Anything, "u1", "otp").Return(nil)
	f.sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.jwt.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer", nil)

	bearer, refresh, sess, err := f.svc.ValidateOTP(context.Background(), ValidateOTPRequest{Email: "ana@example.com", OTP: "123456"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", bearer)
	assert.NotEmpty(t, refresh)
	assert.NotNil(t, sess.User)
}

func TestValidateOTP_WrongCode(t *testing.T) {
	f := newFixture()
	u := &domain.User{UserID: "u1", Email: "ana@example.com", Enable: true}
	f.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(u, nil)
	f.verifications.On("Get", mock.Anything, "u1", "otp").Return(&domain.UserVerification{
		UserID: "u1", Type: "otp", Code: "123456", ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)

	_, _, _, err := f.svc.ValidateOTP(context.Background(), ValidateOTPRequest{Email: "ana@example.com", OTP: "654321"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.sessions.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestValidateOTP_Expired(t *testing.T) {
	f := newFixture()
	u := &domain.User{UserID: "u1", Email: "ana@example.com", Enable: true}
	f.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(u, nil)
	f.verifications.On("Get", mock.Anything, "u1", "otp").Return(&domain.UserVerification{
		UserID: "u1", Type: "otp", Code: "123456", ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)

	_, _, _, err := f.svc.ValidateOTP(context.Background(), ValidateOTPRequest{Email: "ana@example.com", OTP: "123456"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestNewOTP_SixDigitsZeroPadded(t *testing.T) {
	for i := 0; i < 1000; i++ {
		otp, err := newOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestChangePassword_RehashesAndStores(t *testing.T) {
	f := newFixture()
	f.users.On("UpdatePassword", mock.Anything, "u1", mock.MatchedBy(func(hash string) bool {
		return hash != "" && hash != "new-password-1"
	})).Return(nil)

	require.NoError(t, f.svc.ChangePassword(context.Background(), "u1", "new-password-1"))
	f.users.AssertExpectations(t)
}
