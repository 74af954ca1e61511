package handlers

import "net/http"

// OpenApp records today's open in the caller's timezone (?tz=, default from config).
// Storage trouble never fails the request; the stored streak comes back with advanced=false.
func (h *Handler) OpenApp(w http.ResponseWriter, r *http.Request) {
	loc, err := h.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := h.Streaks.RecordOpen(r.Context(), currentUser(r), loc)
	writeJSON(w, http.StatusOK, Response{"streak": res})
}

func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	res, err := h.Streaks.Current(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"streak": res})
}
