package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/auth"
	"github.com/shelfsocial/shelfsocial-server/internal/logger"
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

// ProvideAuthService provides the account and login service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	hasher := do.MustInvoke[*auth.PasswordHasher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, hasher, log.Component("auth")), nil
}

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Component("catalog")), nil
}

// ProvideReviewService provides the review ledger.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, log.Component("reviews")), nil
}

// ProvideReadingStatusService provides the reading status tracker.
func ProvideReadingStatusService(i do.Injector) (*service.ReadingStatusService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReadingStatusService(storeHandle.Store, log.Component("reading_status")), nil
}

// ProvideFollowService provides the social graph service.
func ProvideFollowService(i do.Injector) (*service.FollowService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFollowService(storeHandle.Store, log.Component("follows")), nil
}

// ProvideEngagementService provides likes and comments.
func ProvideEngagementService(i do.Injector) (*service.EngagementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEngagementService(storeHandle.Store, log.Component("engagement")), nil
}

// ProvideProfileService provides profile assembly and user search.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, log.Component("profiles")), nil
}
