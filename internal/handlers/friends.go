package handlers

import (
	"net/http"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
)

type AddFriendRequest struct {
	Code string `json:"code"`
}

func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req AddFriendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	friend, err := h.Friends.AddFriendByCode(r.Context(), currentUser(r), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := friend.FirstName
	if friend.LastName != "" {
		name += " " + friend.LastName
	}
	writeJSON(w, http.StatusOK, Response{
		"message": i18n.TCtx(r.Context(), i18n.MsgFriendAdded, map[string]string{"name": name}),
		"friend":  friend,
	})
}

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.Friends.ListFriends(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{"friends": friends})
}

// GetLeaderboard returns the top list and the caller's rank, or unranked.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Leaderboard.ForUser(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{
		"entries":      view.Entries,
		"current_rank": view.CurrentRank,
		"unranked":     view.Unranked,
	})
}
