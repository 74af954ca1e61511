package handlers

import (
	"net/http"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{"challenges": h.Challenges.All()})
}

// GetChallenge includes the text an entry editor starts with for this challenge.
func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.Challenges.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, r, http.StatusNotFound, i18n.MsgChallengeNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		"challenge":       ch,
		"starter_content": services.StarterContent(ch),
	})
}
