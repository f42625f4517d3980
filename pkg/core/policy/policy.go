// Package policy decides, per request, whether a caller may act on a
// resource. Rules are evaluated in order against a shared Input; the first
// failing rule ends evaluation and its error carries the response status.
package policy

import (
	"context"
	"errors"

	apperrors "social-blog/pkg/common/errors"
	"social-blog/pkg/core/auth"
)

// Rejection messages returned to clients.
var (
	ErrTokenMissing = apperrors.Auth("token is not provided, access denied")
	ErrTokenInvalid = apperrors.Auth("invalid token, access denied")
	ErrOnlyAdmin    = apperrors.Auth("not allowed to access. only admins")
	ErrOnlySelf     = apperrors.Auth("not allowed to access. only user himself")
	ErrSelfOrAdmin  = apperrors.Forbidden("not allowed, the user himself or admin")
	ErrOnlyOwner    = apperrors.Forbidden("access denied, you are not allowed")
	ErrOwnerOrAdmin = apperrors.Forbidden("access denied, forbidden")
	ErrOwnerUnknown = errors.New("policy: owner rule evaluated before the owner was resolved")
)

// Input is the state a chain evaluates. Transport code fills Token and
// PathID; rules fill Claims and OwnerID as they pass.
type Input struct {
	Token   string // raw Authorization header value
	PathID  string
	Claims  *auth.Claims
	OwnerID string

	ownerResolved bool
}

// Rule allows (nil) or denies (an *errors.Error) a request.
type Rule func(ctx context.Context, in *Input) error

// Chain runs rules left to right and stops at the first denial.
type Chain []Rule

func (ch Chain) Evaluate(ctx context.Context, in *Input) error {
	for _, rule := range ch {
		if err := rule(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

// Verifier turns a raw bearer token into claims.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and attaches its claims.
func Authenticate(v Verifier) Rule {
	return func(_ context.Context, in *Input) error {
		token, err := auth.BearerToken(in.Token)
		if err == nil {
			in.Claims, err = v.Verify(token)
		}
		switch {
		case err == nil:
			return nil
		case errors.Is(err, auth.ErrTokenMissing):
			in.Claims = nil
			return ErrTokenMissing
		default:
			in.Claims = nil
			return ErrTokenInvalid
		}
	}
}

// authenticated is the precondition shared by every claim predicate: no
// claims is always a 401, never a 403.
func authenticated(in *Input) error {
	if in.Claims == nil {
		return ErrTokenMissing
	}
	return nil
}

func RequireAdmin() Rule {
	return func(_ context.Context, in *Input) error {
		if err := authenticated(in); err != nil {
			return err
		}
		if !in.Claims.IsAdmin {
			return ErrOnlyAdmin
		}
		return nil
	}
}

// RequireSelf allows only the user named by the path id.
func RequireSelf() Rule {
	return func(_ context.Context, in *Input) error {
		if err := authenticated(in); err != nil {
			return err
		}
		if !isSubject(in.Claims, in.PathID) {
			return ErrOnlySelf
		}
		return nil
	}
}

func RequireSelfOrAdmin() Rule {
	return func(_ context.Context, in *Input) error {
		if err := authenticated(in); err != nil {
			return err
		}
		if !isSubject(in.Claims, in.PathID) && !in.Claims.IsAdmin {
			return ErrSelfOrAdmin
		}
		return nil
	}
}

// RequireOwner allows only the owner of the resolved resource.
func RequireOwner() Rule {
	return func(_ context.Context, in *Input) error {
		if err := authenticated(in); err != nil {
			return err
		}
		if !in.ownerResolved {
			return apperrors.Internal(ErrOwnerUnknown)
		}
		if !isSubject(in.Claims, in.OwnerID) {
			return ErrOnlyOwner
		}
		return nil
	}
}

func RequireOwnerOrAdmin() Rule {
	return func(_ context.Context, in *Input) error {
		if err := authenticated(in); err != nil {
			return err
		}
		if !in.ownerResolved {
			return apperrors.Internal(ErrOwnerUnknown)
		}
		if !isSubject(in.Claims, in.OwnerID) && !in.Claims.IsAdmin {
			return ErrOwnerOrAdmin
		}
		return nil
	}
}

// isSubject reports whether id names the caller. An empty id, such as a
// resource whose owner no longer exists, never matches.
func isSubject(c *auth.Claims, id string) bool {
	return id != "" && c.UserID == id
}
