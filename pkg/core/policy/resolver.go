package policy

import (
	"context"

	apperrors "social-blog/pkg/common/errors"
)

// OwnerResolver fetches only the owner id of a resource.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, id string) (string, error)
}

// OwnerResolverFunc adapts a function to OwnerResolver.
type OwnerResolverFunc func(ctx context.Context, id string) (string, error)

func (f OwnerResolverFunc) OwnerOf(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// ResolveOwner loads the owner of the resource named by the path id.
// Malformed or unknown ids fail with notFound. Nothing is cached.
func ResolveOwner(r OwnerResolver, notFound error) Rule {
	return func(ctx context.Context, in *Input) error {
		if !ValidID(in.PathID) {
			return notFound
		}
		owner, err := r.OwnerOf(ctx, in.PathID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				return notFound
			}
			return err
		}
		in.OwnerID = owner
		in.ownerResolved = true
		return nil
	}
}
