package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/models"
)

type userIDKey struct{}

// WebSocketPath is the only route that takes the session token from the query string.
const WebSocketPath = "/ws/subscribe"

// SessionAuthenticator resolves a session token to a user id and slides its expiry.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (userID string, ok bool, err error)
	Refresh(ctx context.Context, token string) error
}

// ProfileLookup loads the signed-in user's profile, used for the stored locale.
type ProfileLookup interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the id stored by Auth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey{}).(string)
	return uid, ok && uid != ""
}

// BearerToken reads "Authorization: Bearer <token>". Browsers can't set headers on a
// WebSocket handshake, so WebSocketPath also accepts a token query parameter.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if r.URL.Path != WebSocketPath {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Auth rejects requests without a valid session. A valid session gets its expiry pushed out.
// The user id goes into the context and the saved locale replaces the Accept-Language guess.
func Auth(sessions SessionAuthenticator, profiles ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, r)
				return
			}

			userID, ok, err := sessions.Authenticate(ctx, token)
			if err != nil {
				logger.Log.WithError(err).Warn("auth: session lookup failed")
			}
			if !ok {
				unauthorized(w, r)
				return
			}

			if err := sessions.Refresh(ctx, token); err != nil {
				logger.WithUser(userID).WithError(err).Warn("auth: session refresh failed")
			}

			ctx = WithUserID(ctx, userID)
			if profiles != nil {
				if u, err := profiles.GetByID(ctx, userID); err == nil && u.Locale != "" {
					ctx = i18n.WithLocale(ctx, u.Locale)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": i18n.TCtx(r.Context(), i18n.MsgAuthRequired, nil),
	})
}
