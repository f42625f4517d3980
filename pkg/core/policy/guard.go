package policy

import (
	"context"

	"github.com/google/uuid"

	apperrors "social-blog/pkg/common/errors"
)

// ValidID reports whether raw is a canonical resource id
// (36-char hyphenated UUID).
func ValidID(raw string) bool {
	if len(raw) != 36 {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

// RequireValidID rejects malformed path ids before any other rule runs.
func RequireValidID() Rule {
	return func(_ context.Context, in *Input) error {
		if !ValidID(in.PathID) {
			return apperrors.ErrInvalidID
		}
		return nil
	}
}
