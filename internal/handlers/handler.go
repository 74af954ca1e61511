package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/middleware"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
)

// Handler serves the journal API. Every field is required except Hub, which only
// the live-update socket uses.
type Handler struct {
	Auth        *services.AuthService
	Entries     *services.EntryService
	Collections *services.CollectionService
	Challenges  *services.ChallengeCatalog
	Streaks     *services.StreakService
	Friends     *services.FriendGraph
	Leaderboard *services.Leaderboard
	Profiles    *services.ProfileService
	Hub         *services.Hub

	// DefaultLocation is "today" for requests that don't name a timezone.
	DefaultLocation *time.Location
}

// Response is the envelope every endpoint answers with. Endpoint payloads sit next to
// success/message at the top level.
type Response map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	if _, ok := body["success"]; !ok {
		body["success"] = status < http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, key string, args map[string]string) {
	writeJSON(w, status, Response{"message": i18n.TCtx(r.Context(), key, args)})
}

// writeError maps service errors to a status and a message in the request's language.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := ve.Message
		if ve.Key != "" {
			msg = i18n.TCtx(r.Context(), ve.Key, nil)
		}
		writeJSON(w, http.StatusBadRequest, Response{"message": msg, "field": ve.Field})
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, r, http.StatusNotFound, i18n.MsgEntryNotFound, nil)
	case errors.Is(err, services.ErrCollectionNotFound):
		writeMessage(w, r, http.StatusNotFound, i18n.MsgCollectionNotFound, nil)
	case errors.Is(err, services.ErrFriendCodeNotFound):
		writeMessage(w, r, http.StatusNotFound, i18n.MsgFriendNotFound, nil)
	case errors.Is(err, services.ErrUserNotFound):
		writeMessage(w, r, http.StatusNotFound, i18n.MsgUserNotFound, nil)
	case errors.Is(err, services.ErrCannotAddSelf):
		writeMessage(w, r, http.StatusBadRequest, i18n.MsgCannotAddSelf, nil)
	case errors.Is(err, services.ErrForbidden):
		writeMessage(w, r, http.StatusForbidden, i18n.MsgForbidden, nil)
	case errors.Is(err, services.ErrEmailTaken):
		writeMessage(w, r, http.StatusConflict, i18n.MsgEmailTaken, nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, r, http.StatusUnauthorized, i18n.MsgBadCredentials, nil)
	case errors.Is(err, services.ErrAvatarTooLarge):
		writeMessage(w, r, http.StatusRequestEntityTooLarge, i18n.MsgAvatarTooLarge, nil)
	default:
		entry := logger.Log.WithError(err).WithField("path", r.URL.Path)
		if uid, ok := middleware.UserIDFromContext(r.Context()); ok {
			entry = entry.WithField("user_id", uid)
		}
		entry.Error("request failed")
		writeMessage(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil)
	}
}

// decodeBody reads a JSON body into dst, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, nil)
		return false
	}
	return true
}

// currentUser is set by middleware.Auth on every route that reaches these handlers.
func currentUser(r *http.Request) string {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return uid
}

// location resolves ?tz=, falling back to the configured default.
func (h *Handler) location(r *http.Request) (*time.Location, error) {
	if tz := r.URL.Query().Get("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, &utils.ValidationError{Field: "tz", Message: "tz must be an IANA timezone name"}
		}
		return loc, nil
	}
	if h.DefaultLocation != nil {
		return h.DefaultLocation, nil
	}
	return time.UTC, nil
}
