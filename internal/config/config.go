package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	PostgresURI    string
	RedisURI       string
	Port           string
	FrontendURL    string
	AllowedHost    string   // production host check; empty disables it
	TrustProxy     bool     // read client IPs from X-Forwarded-For
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment    string   // ENV: production, development, etc.
	LogLevel       string

	// Object store for avatars: "cloudinary" or "s3"
	StorageType         string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	S3Bucket            string
	S3Region            string
	S3Endpoint          string // S3-compatible server; empty means AWS
	S3PublicURL         string // CDN or public origin for avatar URLs
	AWSAccessKey        string
	AWSSecretKey        string

	DefaultTimezone     string
	LeaderboardSize     int
	LeaderboardCacheTTL time.Duration
	FriendCodeLength    int
	ChallengesPath      string // optional catalog override (.json/.yaml)
	FriendAuditSchedule string // cron schedule, empty disables the auditor
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:8081"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	return &Config{
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/inkwell?replicaSet=rs0")),
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/inkwell?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:8081"),
		AllowedHost:    getEnv("ALLOWED_HOST", ""),
		TrustProxy:     strings.EqualFold(getEnv("TRUST_PROXY", "false"), "true"),
		AllowedOrigins: allowedOrigins,
		Environment:    env,
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		StorageType:         strings.ToLower(getEnv("STORAGE_TYPE", "cloudinary")),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		S3Bucket:            getEnv("AWS_S3_BUCKET", ""),
		S3Region:            getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:          getEnv("AWS_S3_ENDPOINT", ""),
		S3PublicURL:         getEnv("AWS_S3_PUBLIC_URL", ""),
		AWSAccessKey:        getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:        getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DefaultTimezone:     getEnv("DEFAULT_TIMEZONE", "UTC"),
		LeaderboardSize:     getEnvInt("LEADERBOARD_SIZE", 25),
		LeaderboardCacheTTL: getEnvDuration("LEADERBOARD_CACHE_TTL", 30*time.Second),
		FriendCodeLength:    getEnvInt("FRIEND_CODE_LENGTH", 6),
		ChallengesPath:      getEnv("CHALLENGES_PATH", ""),
		FriendAuditSchedule: getEnv("FRIEND_AUDIT_SCHEDULE", "@every 1h"),
	}
}

// Location returns the configured default timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
