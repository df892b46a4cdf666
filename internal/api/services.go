package api

import (
	"github.com/shelfsocial/shelfsocial-server/internal/service"
)

// Services groups the business services used by the API server.
type Services struct {
	Auth          *service.AuthService
	Catalog       *service.CatalogService
	Review        *service.ReviewService
	ReadingStatus *service.ReadingStatusService
	Follow        *service.FollowService
	Engagement    *service.EngagementService
	Profile       *service.ProfileService
}
