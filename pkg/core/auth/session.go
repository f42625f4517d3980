// Package auth mints and verifies the stateless bearer tokens that carry a
// caller's identity, and hashes the passwords those identities log in with.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when no token was supplied.
	ErrTokenMissing = errors.New("token is not provided")
	// ErrTokenInvalid covers malformed input, bad signatures, wrong
	// algorithm or issuer, expiry and empty subjects.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the identity embedded in every token.
type Claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// IssuerConfig configures an Issuer.
type IssuerConfig struct {
	Secret        string
	Issuer        string
	SigningMethod string        // HS256, HS384 or HS512
	TTL           time.Duration // 0 issues tokens without an exp claim
}

// Issuer signs and verifies tokens with a single shared secret.
type Issuer struct {
	secret []byte
	issuer string
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	name := cfg.SigningMethod
	if name == "" {
		name = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(name)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing method %q", cfg.SigningMethod)
	}
	return &Issuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// Issue mints a token for the subject.
func (i *Issuer) Issue(subjectID string, isAdmin bool) (string, error) {
	if subjectID == "" {
		return "", errors.New("auth: empty subject")
	}
	now := i.now()
	claims := &Claims{
		UserID:  subjectID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   i.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// Verify decodes a token into its claims.
func (i *Issuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrTokenMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrTokenInvalid
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenInvalid
	}
	return token, nil
}
