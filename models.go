package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FullName      string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Active        bool       `bun:"is_active,notnull,default:true" json:"is_active,omitempty"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// VerificationChallenge is one pending recovery challenge per email.
// A new request for the same email overwrites the previous row, so at
// most one code is live per account.
type VerificationChallenge struct {
	bun.BaseModel `bun:"table:verification_challenges,alias:vch"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Code          string     `bun:"code,notnull" json:"-"`
	IssuedAt      time.Time  `bun:"issued_at,notnull" json:"issued_at,omitempty"`
	ResendCount   int        `bun:"resend_count,notnull,default:0" json:"resend_count,omitempty"`
	LastResendAt  time.Time  `bun:"last_resend_at,notnull" json:"last_resend_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ExpiresAt is the moment the challenge code stops being accepted.
func (v *VerificationChallenge) ExpiresAt(ttl time.Duration) time.Time {
	return v.IssuedAt.Add(ttl)
}

// IsExpired reports whether the code is past its TTL at the given time.
func (v *VerificationChallenge) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.After(v.ExpiresAt(ttl))
}

// Matches compares the submitted code against the stored one.
func (v *VerificationChallenge) Matches(code string) bool {
	return v.Code != "" && v.Code == code
}
