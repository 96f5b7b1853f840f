package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Email    string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Code     string `json:"code" example:"042731" doc:"Verification code from the recovery email."`
	Password string `json:"password" example:"some_secret_word" doc:"New password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetHandler struct {
	repo     RepositoryManager
	cfg      Config
	logger   Logger
	activity ActivitySink
	now      func() time.Time
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager, cfg Config) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:     repo,
		cfg:      cfg,
		logger:   defLogger{},
		activity: noopActivitySink{},
		now:      time.Now,
	}
}

// WithActivitySink overrides the sink that receives reset audit events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock overrides the time source, used by tests.
func (h *FinalizePasswordResetHandler) WithClock(now func() time.Time) *FinalizePasswordResetHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	challenge, err := h.repo.VerificationChallenges().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrVerificationNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve verification challenge")
	}

	if challenge.IsExpired(h.now(), h.cfg.GetVerificationCodeTTL()) {
		return ErrVerificationCodeExpired
	}

	if !challenge.Matches(event.Code) {
		return ErrVerificationCodeInvalid
	}

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if err := ValidatePasswordStrength(event.Password); err != nil {
		return err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, hash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
		}

		// The challenge is single use, drop it with the same commit.
		if err := h.repo.VerificationChallenges().DeleteByEmailTx(ctx, tx, email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete verification challenge")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset transaction failed")
	}

	h.logger.Info("password reset finalized", "email", email)

	if err := h.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventPasswordResetSuccess,
		Email:      email,
		UserID:     user.ID.String(),
		OccurredAt: h.now(),
	}); err != nil {
		h.logger.Warn("failed to record password reset event", "error", err)
	}

	return nil
}
