package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/session"
)

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := session.CurrentUser(r.Context())
	d, err := h.Deps.Dashboard.Build(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}

// MyListings is the landlord dashboard, drafts included.
func (h *Handler) MyListings(w http.ResponseWriter, r *http.Request) {
	user, _ := session.CurrentUser(r.Context())
	d, err := h.Deps.Dashboard.Landlord(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}

func (h *Handler) MyTracked(w http.ResponseWriter, r *http.Request) {
	user, _ := session.CurrentUser(r.Context())
	d, err := h.Deps.Dashboard.Student(r.Context(), user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
