package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *Issuer {
	t.Helper()
	iss, err := NewIssuer(IssuerConfig{Secret: "test-secret", Issuer: "social-blog", TTL: ttl})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)

	token, err := iss.Issue("u-1", true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u-1" || !claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected exp claim when TTL is set")
	}
}

func TestIssueWithoutTTLOmitsExpiry(t *testing.T) {
	iss := newTestIssuer(t, 0)
	token, err := iss.Issue("u-1", false)
	if err != nil {
		t.Fatal(err)
	}
	iss.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }

	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("expected no exp claim, got %v", claims.ExpiresAt)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)
	good, _ := iss.Issue("u-1", false)

	other, _ := NewIssuer(IssuerConfig{Secret: "other-secret", Issuer: "social-blog", TTL: time.Hour})
	forged, _ := other.Issue("u-1", true)

	// splice an admin payload into a genuinely signed token
	parts := strings.Split(good, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	wrongIssuer, _ := NewIssuer(IssuerConfig{Secret: "test-secret", Issuer: "someone-else"})
	foreign, _ := wrongIssuer.Issue("u-1", false)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1", IsAdmin: true})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "social-blog"},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrTokenMissing},
		{"garbage", "not.a.token", ErrTokenInvalid},
		{"other secret", forged, ErrTokenInvalid},
		{"tampered payload", spliced, ErrTokenInvalid},
		{"wrong issuer", foreign, ErrTokenInvalid},
		{"alg none", unsigned, ErrTokenInvalid},
		{"empty subject", noSubject, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := iss.Verify(tt.token)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Verify() err = %v, want %v", err, tt.want)
			}
			if claims != nil {
				t.Fatalf("expected no claims, got %+v", claims)
			}
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	iss := newTestIssuer(t, time.Hour)
	start := time.Now()
	iss.now = func() time.Time { return start }
	token, _ := iss.Issue("u-1", false)

	iss.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := iss.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid for expired token, got %v", err)
	}
}

func TestNewIssuerValidation(t *testing.T) {
	if _, err := NewIssuer(IssuerConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewIssuer(IssuerConfig{Secret: "x", SigningMethod: "RS256"}); err == nil {
		t.Error("expected error for non-HMAC method")
	}
	if _, err := NewIssuer(IssuerConfig{Secret: "x", SigningMethod: "hs384"}); err != nil {
		t.Errorf("lowercase HMAC method should be accepted: %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", ErrTokenMissing},
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"bearer   abc", "abc", nil},
		{"Bearer", "", ErrTokenInvalid},
		{"Bearer    ", "", ErrTokenInvalid},
		{"Basic dXNlcjpwdw==", "", ErrTokenInvalid},
	}

	for _, tt := range tests {
		token, err := BearerToken(tt.header)
		if !errors.Is(err, tt.err) || token != tt.token {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, token, err, tt.token, tt.err)
		}
	}
}
