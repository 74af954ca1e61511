package routes

import (
	"net/http"

	"github.com/AnshRaj112/inkwell-backend/internal/handlers"
	"github.com/AnshRaj112/inkwell-backend/internal/metrics"
	"github.com/AnshRaj112/inkwell-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the API on r. auth guards every route that acts on a user.
func SetupRoutes(r chi.Router, h *handlers.Handler, auth func(http.Handler) http.Handler, userLimit func(http.Handler) http.Handler) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)

	r.Get("/api/challenges", h.ListChallenges)
	r.Get("/api/challenges/{id}", h.GetChallenge)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/api/auth/signout", h.Signout)
		r.Get("/api/auth/me", h.Me)

		r.Post("/api/entries", h.CreateEntry)
		r.Get("/api/entries", h.ListEntries)
		r.With(userLimit).Get("/api/entries/search", h.SearchEntries)
		r.Get("/api/entries/{id}", h.GetEntry)
		r.Put("/api/entries/{id}", h.UpdateEntry)
		r.Delete("/api/entries/{id}", h.DeleteEntry)

		r.Post("/api/collections", h.CreateCollection)
		r.Get("/api/collections", h.ListCollections)
		r.Get("/api/collections/{id}", h.GetCollection)
		r.Delete("/api/collections/{id}", h.DeleteCollection)

		r.Post("/api/streak/open", h.OpenApp)
		r.Get("/api/streak", h.GetStreak)

		r.Post("/api/friends", h.AddFriend)
		r.Get("/api/friends", h.ListFriends)
		r.Get("/api/leaderboard", h.GetLeaderboard)

		r.Get("/api/users/me/stats", h.ProfileStats)
		r.Put("/api/users/me", h.UpdateName)
		r.Put("/api/users/me/mood", h.SetMood)
		r.Put("/api/users/me/locale", h.SetLocale)
		r.With(userLimit).Post("/api/users/me/avatar", h.UploadAvatar)

		r.Get(middleware.WebSocketPath, h.Subscribe)
	})
}
