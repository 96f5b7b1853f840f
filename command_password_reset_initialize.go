package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Challenge *VerificationChallenge
	Success   bool
}

type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	mailer   Mailer
	tokens   TokenService
	cfg      Config
	logger   Logger
	activity ActivitySink
	now      func() time.Time
}

func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer, tokens TokenService, cfg Config, logger Logger) *InitializePasswordResetHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &InitializePasswordResetHandler{
		repo:     repo,
		mailer:   mailer,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
		activity: noopActivitySink{},
		now:      time.Now,
	}
}

// WithActivitySink overrides the sink that receives reset request audit events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithClock overrides the time source, used by tests.
func (h *InitializePasswordResetHandler) WithClock(now func() time.Time) *InitializePasswordResetHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	email := NormalizeEmail(event.Email)

	// Unlike login, this flow reports an unknown email explicitly so
	// the UI can prompt for a correction.
	user, err := h.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrEmailNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	code, err := GenerateVerificationCode()
	if err != nil {
		return err
	}

	now := h.now()
	challenge := &VerificationChallenge{
		Email:        email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		Code:         code,
		IssuedAt:     now,
		ResendCount:  0,
		LastResendAt: now,
	}

	// Overwrites any previous challenge, only the newest code is live.
	if err := h.repo.VerificationChallenges().Put(ctx, challenge); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store verification challenge")
	}

	if err := h.mailer.SendVerificationCode(ctx, email, user.FullName, code); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification code")
	}

	if base := h.cfg.GetResetLinkBase(); base != "" && h.tokens != nil {
		if token, err := h.tokens.IssueResetToken(email); err != nil {
			h.logger.Error("failed to issue reset token", "error", err)
		} else {
			link := fmt.Sprintf("%s?token=%s", base, token)
			if err := h.mailer.SendResetLink(ctx, email, user.FullName, link); err != nil {
				h.logger.Error("failed to send reset link", "error", err)
			}
		}
	}

	if err := h.activity.Record(ctx, ActivityEvent{
		EventType:  ActivityEventPasswordResetRequested,
		Email:      email,
		UserID:     user.ID.String(),
		OccurredAt: now,
	}); err != nil {
		h.logger.Warn("failed to record reset request event", "error", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			Challenge: challenge,
			Success:   true,
		})
	}

	return nil
}
