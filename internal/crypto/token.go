package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tasktrack/tasktrack-go/internal/model"
)

// DefaultTokenTTL is how long an issued credential stays valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the credential payload. Field order is the wire order.
type Claims struct {
	UserID    string           `json:"userId"`
	Email     string           `json:"email"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c Claims) GetIssuer() (string, error)                   { return "", nil }
func (c Claims) GetSubject() (string, error)                  { return c.UserID, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

// hexHMAC is HS256 with the digest hex-encoded before the segment encoding.
// Existing clients expect base64url(hex(hmac)) rather than base64url(hmac).
type hexHMAC struct{}

var signingMethod jwt.SigningMethod = hexHMAC{}

func (hexHMAC) Alg() string { return "HS256" }

func (hexHMAC) Sign(signingString string, key interface{}) ([]byte, error) {
	secret, ok := key.([]byte)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingString))
	return []byte(hex.EncodeToString(mac.Sum(nil))), nil
}

func (m hexHMAC) Verify(signingString string, sig []byte, key interface{}) error {
	want, err := m.Sign(signingString, key)
	if err != nil {
		return err
	}
	if !hmac.Equal(sig, want) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

// TokenCodec issues and verifies signed, expiring credentials.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock overrides the wall clock used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// WithTTL overrides DefaultTokenTTL.
func WithTTL(ttl time.Duration) TokenOption {
	return func(c *TokenCodec) { c.ttl = ttl }
}

// NewTokenCodec creates a TokenCodec signing with secret.
func NewTokenCodec(secret string, opts ...TokenOption) *TokenCodec {
	c := &TokenCodec{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the lifetime given to issued credentials.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a credential for the given user.
func (c *TokenCodec) Issue(userID, email string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	return jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
}

// Verify decodes a credential and returns the identity it carries. It reports
// false for any malformed, forged or expired credential and never returns an error.
func (c *TokenCodec) Verify(token string) (model.Identity, bool) {
	now := c.now().Truncate(time.Second)

	var claims Claims
	parsed, parts, err := c.parser.ParseUnverified(token, &claims)
	if err != nil || parsed.Method == nil || parsed.Method.Alg() != signingMethod.Alg() {
		return model.Identity{}, false
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return model.Identity{}, false
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return model.Identity{}, false
	}

	validator := jwt.NewValidator(jwt.WithTimeFunc(func() time.Time { return now }))
	if err := validator.Validate(claims); err != nil {
		return model.Identity{}, false
	}

	if claims.UserID == "" {
		return model.Identity{}, false
	}

	return model.Identity{UserID: claims.UserID, Email: claims.Email}, true
}
