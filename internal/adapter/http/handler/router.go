package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/http/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API. limiter may be nil.
func NewRouter(h *Handler, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OptionalAuth(h.Identity, h.logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Metrics(h.Metrics))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Get("/healthz", h.Healthz)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)
		r.Post("/signout", h.SignOut)
		r.With(middleware.RequireAuth).Get("/me", h.Me)
	})

	r.Route("/api/listings", func(r chi.Router) {
		r.Get("/", h.ListListings)
		r.With(middleware.RequireAuth).Post("/", h.CreateListing)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetListing)
			r.Get("/ratings", h.GetRating)
			r.Get("/comments", h.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Delete("/", h.DeleteListing)
				r.Post("/images", h.ResumeListing)
				r.Get("/track", h.TrackStatus)
				r.Post("/track", h.ToggleTrack)
				r.Post("/ratings", h.SubmitRating)
				r.Post("/comments", h.AddComment)
				r.Delete("/comments/{cid}", h.RemoveComment)
				r.Post("/comments/{cid}/like", h.ToggleLike)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/me/listings", h.MyListings)
		r.Get("/api/me/tracked", h.MyTracked)
		r.Get("/api/dashboard", h.Dashboard)
	})

	return r
}
