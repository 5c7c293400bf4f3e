package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/session"
	"go.uber.org/zap"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.Identity.CreateAccount(r.Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	token, user, err := h.Identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{Token: token, User: toUserResponse(user)})
}

// SignOut revokes the session even when the token no longer authenticates.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := session.Token(r.Context())
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if err := h.Identity.SignOut(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current, err := session.Require(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.Identity.Profile(r.Context(), current.ID)
	if err != nil {
		h.logger.Warn("Profile lookup failed", zap.String("user_id", current.ID), zap.Error(err))
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
