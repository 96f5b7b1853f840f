package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type VerificationChallenges interface {
	repository.Repository[*VerificationChallenge]

	GetByEmail(ctx context.Context, email string) (*VerificationChallenge, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*VerificationChallenge, error)

	// Put stores the challenge, replacing any previous one for the
	// same email. The ledger keeps at most one live challenge per
	// account.
	Put(ctx context.Context, record *VerificationChallenge) error
	PutTx(ctx context.Context, tx bun.IDB, record *VerificationChallenge) error

	DeleteByEmail(ctx context.Context, email string) error
	DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error

	// PurgeIssuedBefore removes challenges issued before the cutoff
	// and returns how many rows went away.
	PurgeIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type verificationChallenges struct {
	repository.Repository[*VerificationChallenge]
	db *bun.DB
}

var (
	_ VerificationChallenges                        = (*verificationChallenges)(nil)
	_ repository.Repository[*VerificationChallenge] = (*verificationChallenges)(nil)
)

func NewVerificationChallengesRepository(db *bun.DB) VerificationChallenges {
	repo := repository.NewRepository[*VerificationChallenge](db, repository.ModelHandlers[*VerificationChallenge]{
		NewRecord: func() *VerificationChallenge { return &VerificationChallenge{} },
		GetID: func(v *VerificationChallenge) uuid.UUID {
			if v == nil {
				return uuid.Nil
			}
			return v.ID
		},
		SetID: func(v *VerificationChallenge, id uuid.UUID) {
			if v != nil {
				v.ID = id
			}
		},
	})

	return &verificationChallenges{
		Repository: repo,
		db:         db,
	}
}

func (r *verificationChallenges) GetByEmail(ctx context.Context, email string) (*VerificationChallenge, error) {
	return r.GetByEmailTx(ctx, r.db, email)
}

func (r *verificationChallenges) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*VerificationChallenge, error) {
	normalized := NormalizeEmail(email)

	record := &VerificationChallenge{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalized).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": normalized,
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *verificationChallenges) Put(ctx context.Context, record *VerificationChallenge) error {
	return r.PutTx(ctx, r.db, record)
}

func (r *verificationChallenges) PutTx(ctx context.Context, tx bun.IDB, record *VerificationChallenge) error {
	prepareChallengeDefaults(record)

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (email) DO UPDATE").
		Set("full_name = EXCLUDED.full_name").
		Set("password_hash = EXCLUDED.password_hash").
		Set("code = EXCLUDED.code").
		Set("issued_at = EXCLUDED.issued_at").
		Set("resend_count = EXCLUDED.resend_count").
		Set("last_resend_at = EXCLUDED.last_resend_at").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)

	return err
}

func (r *verificationChallenges) DeleteByEmail(ctx context.Context, email string) error {
	return r.DeleteByEmailTx(ctx, r.db, email)
}

func (r *verificationChallenges) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	_, err := tx.NewDelete().
		Model((*VerificationChallenge)(nil)).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Exec(ctx)

	return err
}

func (r *verificationChallenges) PurgeIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*VerificationChallenge)(nil)).
		Where("?TableAlias.issued_at < ?", cutoff).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	return affected, nil
}

func prepareChallengeDefaults(record *VerificationChallenge) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
