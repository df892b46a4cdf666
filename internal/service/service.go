// Package service implements the catalog, review, reading status, social and
// profile use cases on top of store.Store.
package service

import (
	"context"
	"errors"

	"github.com/shelfsocial/shelfsocial-server/internal/domain"
	domainerrors "github.com/shelfsocial/shelfsocial-server/internal/errors"
	"github.com/shelfsocial/shelfsocial-server/internal/store"
	"github.com/shelfsocial/shelfsocial-server/internal/validation"
)

// validate is shared by every service's request structs.
var validate = validation.New()

// translate converts store errors into domain errors. notFound is the message
// used when the store reports a missing row.
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFound)
	case store.IsTransient(err):
		return domainerrors.Transient(err)
	default:
		return err
	}
}

// requireUser returns the authenticated user or Unauthorized.
func requireUser(identity domain.Identity) (*domain.User, error) {
	user, ok := identity.User()
	if !ok {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	return user, nil
}

// loadOwned loads a resource and asserts requester authored it. Missing
// resources are NotFound; anyone else's are Forbidden.
func loadOwned[T domain.Owned](
	ctx context.Context,
	load func(context.Context, string) (T, error),
	id string,
	requester domain.Identity,
	kind string,
) (T, error) {
	var zero T

	user, err := requireUser(requester)
	if err != nil {
		return zero, err
	}

	resource, err := load(ctx, id)
	if err != nil {
		return zero, translate(err, kind+" not found")
	}
	if resource.OwnerID() != user.ID {
		return zero, domainerrors.Forbidden("you do not own this " + kind)
	}
	return resource, nil
}
