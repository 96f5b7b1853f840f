package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/benhvien1a/go-auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// testIdentity implements auth.Identity
type testIdentity struct {
	id       string
	email    string
	fullName string
	role     auth.UserRole
}

func (t testIdentity) ID() string          { return t.id }
func (t testIdentity) Email() string       { return t.email }
func (t testIdentity) FullName() string    { return t.fullName }
func (t testIdentity) Role() auth.UserRole { return t.role }

// MockUsers embeds the interface so only exercised methods need stubs.
type MockUsers struct {
	mock.Mock
	auth.Users
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	args := m.Called(ctx, tx, record)
	if u, ok := args.Get(0).(*auth.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

// MockVerificationChallenges embeds the interface so only exercised methods need stubs.
type MockVerificationChallenges struct {
	mock.Mock
	auth.VerificationChallenges
}

func (m *MockVerificationChallenges) GetByEmail(ctx context.Context, email string) (*auth.VerificationChallenge, error) {
	args := m.Called(ctx, email)
	if challenge, ok := args.Get(0).(*auth.VerificationChallenge); ok {
		return challenge, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationChallenges) Put(ctx context.Context, record *auth.VerificationChallenge) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVerificationChallenges) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

func (m *MockVerificationChallenges) PurgeIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockRepositoryManager embeds the interface so only exercised methods need stubs.
type MockRepositoryManager struct {
	mock.Mock
	auth.RepositoryManager
}

func (m *MockRepositoryManager) Users() auth.Users {
	args := m.Called()
	return args.Get(0).(auth.Users)
}

func (m *MockRepositoryManager) VerificationChallenges() auth.VerificationChallenges {
	args := m.Called()
	return args.Get(0).(auth.VerificationChallenges)
}

// RunInTx executes the closure against a zero transaction so handler
// tests observe the same errors a real transaction would surface.
func (m *MockRepositoryManager) RunInTx(_ context.Context, _ *sql.TxOptions, f func(context.Context, bun.Tx) error) error {
	var tx bun.Tx
	return f(context.Background(), tx)
}

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*auth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) TrackSucccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationCode(ctx context.Context, to, fullName, code string) error {
	args := m.Called(ctx, to, fullName, code)
	return args.Error(0)
}

func (m *MockMailer) SendResetLink(ctx context.Context, to, fullName, link string) error {
	args := m.Called(ctx, to, fullName, link)
	return args.Error(0)
}

// MockActivitySink implements auth.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity, ok := args.Get(0).(auth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueSessionToken(identity auth.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) IssueResetToken(identifier string) (string, error) {
	args := m.Called(identifier)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *auth.JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (auth.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(auth.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestConfig() *auth.SimpleConfig {
	return auth.NewDefaultConfig("test-signing-key")
}
