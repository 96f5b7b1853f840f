package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/benhvien1a/go-auth"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationChallengesPut(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := auth.NewVerificationChallengesRepository(db)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Put(ctx, &auth.VerificationChallenge{
		Email:        "Editor@Example.com",
		FullName:     "Site Editor",
		Code:         "123456",
		IssuedAt:     now,
		LastResendAt: now,
	}))

	found, err := repo.GetByEmail(ctx, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, "editor@example.com", found.Email, "email is stored normalized")
	assert.Equal(t, "123456", found.Code)
	assert.Equal(t, 0, found.ResendCount)
}

func TestVerificationChallengesPutOverwrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := auth.NewVerificationChallengesRepository(db)

	first := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	require.NoError(t, repo.Put(ctx, &auth.VerificationChallenge{
		Email:        "editor@example.com",
		Code:         "111111",
		IssuedAt:     first,
		LastResendAt: first,
	}))

	second := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Put(ctx, &auth.VerificationChallenge{
		Email:        "Editor@Example.com",
		Code:         "222222",
		IssuedAt:     second,
		ResendCount:  1,
		LastResendAt: second,
	}))

	count, err := db.NewSelect().Model((*auth.VerificationChallenge)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one live challenge per email")

	found, err := repo.GetByEmail(ctx, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", found.Code)
	assert.Equal(t, 1, found.ResendCount)
}

func TestVerificationChallengesDeleteByEmail(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewVerificationChallengesRepository(newTestDB(t))

	now := time.Now().UTC()
	require.NoError(t, repo.Put(ctx, &auth.VerificationChallenge{
		Email:        "editor@example.com",
		Code:         "123456",
		IssuedAt:     now,
		LastResendAt: now,
	}))

	require.NoError(t, repo.DeleteByEmail(ctx, "Editor@Example.com"))

	_, err := repo.GetByEmail(ctx, "editor@example.com")
	require.Error(t, err)
	assert.True(t, repository.IsRecordNotFound(err))

	// deleting an absent entry is not an error
	require.NoError(t, repo.DeleteByEmail(ctx, "ghost@example.com"))
}

func TestVerificationChallengesPurgeIssuedBefore(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewVerificationChallengesRepository(newTestDB(t))

	now := time.Now().UTC()
	stale := now.Add(-2 * time.Hour)

	require.NoError(t, repo.Put(ctx, &auth.VerificationChallenge{
		Email:        "stale@example.com",
		Code:         "111111",
		IssuedAt:     stale,
		LastResendAt: stale,
	}))
	require.NoError(t, repo.Put(ctx, &auth.VerificationChallenge{
		Email:        "fresh@example.com",
		Code:         "222222",
		IssuedAt:     now,
		LastResendAt: now,
	}))

	purged, err := repo.PurgeIssuedBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.GetByEmail(ctx, "stale@example.com")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.GetByEmail(ctx, "fresh@example.com")
	assert.NoError(t, err)
}
