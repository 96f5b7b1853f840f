package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendVerificationResponse)
}

func (p ResendVerificationMessage) Type() string { return "user.password_reset_resend" }

type ResendVerificationResponse struct {
	Challenge *VerificationChallenge
	Success   bool
}

type ResendVerificationHandler struct {
	repo   RepositoryManager
	mailer Mailer
	cfg    Config
	logger Logger
	now    func() time.Time
}

func NewResendVerificationHandler(repo RepositoryManager, mailer Mailer, cfg Config, logger Logger) *ResendVerificationHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &ResendVerificationHandler{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (h *ResendVerificationHandler) WithClock(now func() time.Time) *ResendVerificationHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrEmailNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for resend")
	}

	challenge, err := h.repo.VerificationChallenges().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrVerificationNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve verification challenge")
	}

	now := h.now()

	// The window slides from the last resend. Inside it the counter
	// caps resends, once it elapses the next resend goes through.
	withinWindow := now.Before(challenge.LastResendAt.Add(h.cfg.GetResendWindow()))
	if withinWindow && challenge.ResendCount >= h.cfg.GetResendLimit() {
		return ErrResendLimitReached
	}

	code, err := GenerateVerificationCode()
	if err != nil {
		return err
	}

	challenge.Code = code
	challenge.IssuedAt = now
	challenge.ResendCount++
	challenge.LastResendAt = now

	if err := h.repo.VerificationChallenges().Put(ctx, challenge); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification challenge")
	}

	if err := h.mailer.SendVerificationCode(ctx, email, user.FullName, code); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification code")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ResendVerificationResponse{
			Challenge: challenge,
			Success:   true,
		})
	}

	return nil
}
