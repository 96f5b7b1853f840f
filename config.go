package auth

import "time"

// SimpleConfig is a plain struct implementation of Config with
// defaults matching the hospital site deployment.
type SimpleConfig struct {
	SigningKey          string
	SigningMethod       string
	ContextKey          string
	TokenExpiration     int
	ResetTokenDuration  int
	TokenLookup         string
	AuthScheme          string
	Issuer              string
	Audience            []string
	VerificationCodeTTL time.Duration
	ResendLimit         int
	ResendWindow        time.Duration
	ResetLinkBase       string
}

var _ Config = (*SimpleConfig)(nil)

// NewDefaultConfig fills in every knob except the signing key.
func NewDefaultConfig(signingKey string) *SimpleConfig {
	return &SimpleConfig{
		SigningKey:          signingKey,
		SigningMethod:       "HS256",
		ContextKey:          "user",
		TokenExpiration:     24,
		ResetTokenDuration:  15,
		TokenLookup:         "header:Authorization",
		AuthScheme:          "Bearer",
		VerificationCodeTTL: 60 * time.Second,
		ResendLimit:         3,
		ResendWindow:        time.Hour,
	}
}

func (c *SimpleConfig) GetSigningKey() string                  { return c.SigningKey }
func (c *SimpleConfig) GetSigningMethod() string               { return c.SigningMethod }
func (c *SimpleConfig) GetContextKey() string                  { return c.ContextKey }
func (c *SimpleConfig) GetTokenExpiration() int                { return c.TokenExpiration }
func (c *SimpleConfig) GetResetTokenDuration() int             { return c.ResetTokenDuration }
func (c *SimpleConfig) GetTokenLookup() string                 { return c.TokenLookup }
func (c *SimpleConfig) GetAuthScheme() string                  { return c.AuthScheme }
func (c *SimpleConfig) GetIssuer() string                      { return c.Issuer }
func (c *SimpleConfig) GetAudience() []string                  { return c.Audience }
func (c *SimpleConfig) GetVerificationCodeTTL() time.Duration  { return c.VerificationCodeTTL }
func (c *SimpleConfig) GetResendLimit() int                    { return c.ResendLimit }
func (c *SimpleConfig) GetResendWindow() time.Duration         { return c.ResendWindow }
func (c *SimpleConfig) GetResetLinkBase() string               { return c.ResetLinkBase }
