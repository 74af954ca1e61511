package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/inkwell-backend/internal/config"
	"github.com/AnshRaj112/inkwell-backend/internal/database"
	"github.com/AnshRaj112/inkwell-backend/internal/handlers"
	"github.com/AnshRaj112/inkwell-backend/internal/i18n"
	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/metrics"
	"github.com/AnshRaj112/inkwell-backend/internal/middleware"
	"github.com/AnshRaj112/inkwell-backend/internal/routes"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
	"github.com/AnshRaj112/inkwell-backend/pkg/clientip"
	"github.com/go-chi/chi/v5"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("No .env file found")
	}
	cfg := config.Load()
	logger.Init(cfg.IsProduction(), cfg.LogLevel)
	log := logger.Log
	clientip.TrustForwardedFor = cfg.TrustProxy

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	defer database.DisconnectPostgres()

	log.Info("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer database.DisconnectRedis()

	log.Info("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB (transactions need a replica set, e.g. ?replicaSet=rs0)")
	}
	defer database.Disconnect()

	if err := database.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("⚠️  failed to ensure MongoDB indexes")
	}

	catalog, err := services.LoadChallengeCatalog(cfg.ChallengesPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load challenges")
	}

	objects, err := services.NewObjectStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Object storage unavailable; avatar uploads are disabled")
	}

	users := services.NewMongoUserStore(database.DB)
	entries := services.NewMongoEntryStore(database.DB)
	collections := services.NewMongoCollectionStore(database.DB)
	tx := services.NewMongoTransactor(database.Client, database.DB)

	hub := services.NewHub(database.RedisClient)
	go hub.Run(ctx)

	friends := services.NewFriendGraph(users, tx, cfg.FriendCodeLength)
	auditor, err := services.StartFriendAuditor(cfg.FriendAuditSchedule, friends)
	if err != nil {
		log.WithError(err).Fatal("Failed to start friend auditor")
	}
	if auditor != nil {
		defer auditor.Stop()
	}

	sessions := services.NewSessionService(database.RedisClient)
	streaks := services.NewStreakService(services.NewRedisStreakStore(database.RedisClient))
	leaderboard := services.NewLeaderboard(users, services.NewCacheService(database.RedisClient), cfg.LeaderboardSize, cfg.LeaderboardCacheTTL)
	auth := services.NewAuthService(services.NewPostgresAccountStore(database.PostgresDB), users, friends, sessions)

	h := &handlers.Handler{
		Auth:            auth,
		Entries:         services.NewEntryService(entries, collections, services.NewPointsLedger(tx, catalog), leaderboard, hub),
		Collections:     services.NewCollectionService(collections, entries, hub),
		Challenges:      catalog,
		Streaks:         streaks,
		Friends:         friends,
		Leaderboard:     leaderboard,
		Profiles:        services.NewProfileService(users, entries, streaks, objects),
		Hub:             hub,
		DefaultLocation: cfg.Location(),
	}

	r := chi.NewRouter()
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Info("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RedisRateLimit(database.RedisClient, middleware.RateLimitMaxRequests, middleware.RateLimitWindow))
	}
	r.Use(i18n.Middleware)

	routes.SetupRoutes(r, h, middleware.Auth(auth, users), middleware.UserRateLimit)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("🚀 Inkwell backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
