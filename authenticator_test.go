package auth_test

import (
	"context"
	"testing"

	auth "github.com/benhvien1a/go-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a session token on success", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := testIdentity{id: "user-1", email: "editor@example.com", role: auth.RoleEditor}
		provider.On("VerifyIdentity", mock.Anything, "editor@example.com", "Sup3r@Word").
			Return(identity, nil).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig())

		token, err := auther.Login(ctx, "editor@example.com", "Sup3r@Word")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		principal, err := auther.PrincipalFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, "editor@example.com", principal.Email)
		assert.Equal(t, auth.RoleEditor, principal.Role)
	})

	t.Run("collapses lookup and password failures", func(t *testing.T) {
		for _, sentinel := range []error{
			auth.ErrIdentityNotFound,
			auth.ErrMismatchedHashAndPassword,
		} {
			provider := &MockIdentityProvider{}
			provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
				Return(nil, sentinel).Once()

			auther := auth.NewAuthenticator(provider, newTestConfig())

			_, err := auther.Login(ctx, "anyone@example.com", "whatever")
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}
	})

	t.Run("passes through non credential errors", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, auth.ErrAccountInactive).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig())

		_, err := auther.Login(ctx, "suspended@example.com", "Sup3r@Word")
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("nil identity is invalid credentials", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig())

		_, err := auther.Login(ctx, "editor@example.com", "Sup3r@Word")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestLoginRecordsActivity(t *testing.T) {
	ctx := context.Background()

	t.Run("success event", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		sink := &MockActivitySink{}
		identity := testIdentity{id: "user-1", email: "editor@example.com", role: auth.RoleEditor}

		provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
			Return(identity, nil).Once()
		sink.On("Record", mock.Anything, mock.MatchedBy(func(evt auth.ActivityEvent) bool {
			return evt.EventType == auth.ActivityEventLoginSuccess &&
				evt.Email == "editor@example.com" &&
				evt.UserID == "user-1"
		})).Return(nil).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig()).WithActivitySink(sink)

		_, err := auther.Login(ctx, "editor@example.com", "Sup3r@Word")
		require.NoError(t, err)
		sink.AssertExpectations(t)
	})

	t.Run("failure event", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		sink := &MockActivitySink{}

		provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, auth.ErrMismatchedHashAndPassword).Once()
		sink.On("Record", mock.Anything, mock.MatchedBy(func(evt auth.ActivityEvent) bool {
			return evt.EventType == auth.ActivityEventLoginFailure &&
				evt.Email == "editor@example.com"
		})).Return(nil).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig()).WithActivitySink(sink)

		_, err := auther.Login(ctx, "Editor@Example.com", "nope")
		require.Error(t, err)
		sink.AssertExpectations(t)
	})

	t.Run("sink errors never fail the login", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		sink := &MockActivitySink{}

		provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
			Return(testIdentity{id: "u", email: "e@x.com", role: auth.RoleEditor}, nil).Once()
		sink.On("Record", mock.Anything, mock.Anything).
			Return(goerrors.New("sink down", goerrors.CategoryInternal)).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig()).
			WithActivitySink(sink).
			WithLogger(testLogger{})

		_, err := auther.Login(ctx, "e@x.com", "whatever")
		require.NoError(t, err)
	})
}

func TestPrincipalFromTokenRejectsResetTokens(t *testing.T) {
	provider := &MockIdentityProvider{}
	auther := auth.NewAuthenticator(provider, newTestConfig())

	resetToken, err := auther.TokenService().IssueResetToken("editor@example.com")
	require.NoError(t, err)

	_, err = auther.PrincipalFromToken(resetToken)
	assert.ErrorIs(t, err, auth.ErrTokenMalformed)
}

func TestIdentityFromPrincipal(t *testing.T) {
	ctx := context.Background()

	t.Run("nil principal", func(t *testing.T) {
		auther := auth.NewAuthenticator(&MockIdentityProvider{}, newTestConfig())
		_, err := auther.IdentityFromPrincipal(ctx, nil)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("resolves via provider", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		identity := testIdentity{id: "user-1", email: "editor@example.com", role: auth.RoleEditor}
		provider.On("FindIdentityByIdentifier", mock.Anything, "editor@example.com").
			Return(identity, nil).Once()

		auther := auth.NewAuthenticator(provider, newTestConfig())

		got, err := auther.IdentityFromPrincipal(ctx, &auth.AuthenticatedPrincipal{
			Email: "editor@example.com",
			Role:  auth.RoleEditor,
		})
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID())
	})
}

func TestIsCredentialMismatch(t *testing.T) {
	assert.True(t, auth.IsCredentialMismatch(auth.ErrMismatchedHashAndPassword))
	assert.True(t, auth.IsCredentialMismatch(auth.ErrIdentityNotFound))
	assert.True(t, auth.IsCredentialMismatch(auth.ErrInvalidCredentials))
	assert.False(t, auth.IsCredentialMismatch(auth.ErrAccountInactive))
	assert.False(t, auth.IsCredentialMismatch(nil))
}
