// Package handler serves the housing HTTP API.
package handler

import (
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/usecase"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/view"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/metrics"
)

// Deps are the collaborators behind the HTTP API.
type Deps struct {
	Identity  *usecase.IdentityUsecase
	Listings  *usecase.ListingUsecase
	Tracking  *usecase.TrackingUsecase
	Ratings   *usecase.RatingUsecase
	Comments  *usecase.CommentUsecase
	Catalogue *view.ListingList
	Detail    *view.DetailView
	Dashboard *view.DashboardView
	Likes     *view.LikeReconciler
	Metrics   *metrics.MetricsManager
}

type Handler struct {
	Deps
	logger *logger.Logger
}

func New(deps Deps, log *logger.Logger) *Handler {
	return &Handler{Deps: deps, logger: log.Named("HTTPHandler")}
}
