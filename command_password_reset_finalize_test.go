package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/benhvien1a/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFinalizePasswordReset(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	newChallenge := func() *auth.VerificationChallenge {
		return &auth.VerificationChallenge{
			ID:       uuid.New(),
			Email:    "editor@example.com",
			Code:     "042731",
			IssuedAt: issued,
		}
	}

	t.Run("rotates the password and consumes the challenge", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		challenges := &MockVerificationChallenges{}
		sink := &MockActivitySink{}

		user := &auth.User{ID: uuid.New(), Email: "editor@example.com", Active: true}

		repo.On("Users").Return(users)
		repo.On("VerificationChallenges").Return(challenges)
		challenges.On("GetByEmail", mock.Anything, "editor@example.com").Return(newChallenge(), nil).Once()
		users.On("GetByEmail", mock.Anything, "editor@example.com").Return(user, nil).Once()

		var storedHash string
		users.On("ResetPasswordTx", mock.Anything, mock.Anything, user.ID, mock.AnythingOfType("string")).
			Return(nil).
			Run(func(args mock.Arguments) {
				storedHash = args.Get(3).(string)
			}).Once()
		challenges.On("DeleteByEmailTx", mock.Anything, mock.Anything, "editor@example.com").Return(nil).Once()

		sink.On("Record", mock.Anything, mock.MatchedBy(func(evt auth.ActivityEvent) bool {
			return evt.EventType == auth.ActivityEventPasswordResetSuccess &&
				evt.UserID == user.ID.String()
		})).Return(nil).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo, newTestConfig()).
			WithLogger(testLogger{}).
			WithActivitySink(sink).
			WithClock(func() time.Time { return issued.Add(30 * time.Second) })

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Email:    "Editor@Example.com",
			Code:     "042731",
			Password: "N3w@Secret",
		})
		require.NoError(t, err)

		// The stored value is a hash of the new password, never the plaintext.
		assert.NotEqual(t, "N3w@Secret", storedHash)
		assert.NoError(t, auth.ComparePasswordAndHash("N3w@Secret", storedHash))

		users.AssertExpectations(t)
		challenges.AssertExpectations(t)
		sink.AssertExpectations(t)
	})

	t.Run("accepts the code at the TTL boundary", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		challenges := &MockVerificationChallenges{}

		user := &auth.User{ID: uuid.New(), Email: "editor@example.com", Active: true}

		repo.On("Users").Return(users)
		repo.On("VerificationChallenges").Return(challenges)
		challenges.On("GetByEmail", mock.Anything, "editor@example.com").Return(newChallenge(), nil).Once()
		users.On("GetByEmail", mock.Anything, "editor@example.com").Return(user, nil).Once()
		users.On("ResetPasswordTx", mock.Anything, mock.Anything, user.ID, mock.Anything).Return(nil).Once()
		challenges.On("DeleteByEmailTx", mock.Anything, mock.Anything, "editor@example.com").Return(nil).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo, newTestConfig()).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return issued.Add(60 * time.Second) })

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Email:    "editor@example.com",
			Code:     "042731",
			Password: "N3w@Secret",
		})
		require.NoError(t, err)
	})

	t.Run("rejects the code after the TTL", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		challenges := &MockVerificationChallenges{}

		repo.On("VerificationChallenges").Return(challenges)
		challenges.On("GetByEmail", mock.Anything, "editor@example.com").Return(newChallenge(), nil).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo, newTestConfig()).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return issued.Add(61 * time.Second) })

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Email:    "editor@example.com",
			Code:     "042731",
			Password: "N3w@Secret",
		})
		assert.ErrorIs(t, err, auth.ErrVerificationCodeExpired)
	})

	t.Run("rejects a wrong code", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		challenges := &MockVerificationChallenges{}

		repo.On("VerificationChallenges").Return(challenges)
		challenges.On("GetByEmail", mock.Anything, "editor@example.com").Return(newChallenge(), nil).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo, newTestConfig()).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return issued.Add(10 * time.Second) })

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Email:    "editor@example.com",
			Code:     "000000",
			Password: "N3w@Secret",
		})
		assert.ErrorIs(t, err, auth.ErrVerificationCodeInvalid)
	})

	t.Run("weak password leaves everything untouched", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		challenges := &MockVerificationChallenges{}

		user := &auth.User{ID: uuid.New(), Email: "editor@example.com", Active: true}

		repo.On("Users").Return(users)
		repo.On("VerificationChallenges").Return(challenges)
		challenges.On("GetByEmail", mock.Anything, "editor@example.com").Return(newChallenge(), nil).Once()
		users.On("GetByEmail", mock.Anything, "editor@example.com").Return(user, nil).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo, newTestConfig()).
			WithLogger(testLogger{}).
			WithClock(func() time.Time { return issued.Add(10 * time.Second) })

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Email:    "editor@example.com",
			Code:     "042731",
			Password: "weak",
		})
		assert.ErrorIs(t, err, auth.ErrWeakPassword)

		users.AssertNotCalled(t, "ResetPasswordTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		challenges.AssertNotCalled(t, "DeleteByEmailTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no challenge on file", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		challenges := &MockVerificationChallenges{}

		repo.On("VerificationChallenges").Return(challenges)
		challenges.On("GetByEmail", mock.Anything, "editor@example.com").Return(nil, notFoundErr()).Once()

		handler := auth.NewFinalizePasswordResetHandler(repo, newTestConfig()).WithLogger(testLogger{})

		err := handler.Execute(ctx, auth.FinalizePasswordResetMessage{
			Email:    "editor@example.com",
			Code:     "042731",
			Password: "N3w@Secret",
		})
		assert.ErrorIs(t, err, auth.ErrVerificationNotFound)
	})
}
