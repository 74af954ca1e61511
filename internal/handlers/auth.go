package handlers

import (
	"net/http"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/middleware"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
)

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates the account and profile. The request language becomes the profile locale.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.Auth.Signup(r.Context(), req, i18n.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{
		"message": i18n.TCtx(r.Context(), i18n.MsgSignedUp, nil),
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.Auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		"message": i18n.TCtx(r.Context(), i18n.MsgSignedIn, nil),
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Signout(r.Context(), middleware.BearerToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, i18n.MsgSignedOut, nil)
}

// Me returns the signed-in user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Profiles.Get(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"user": user})
}
