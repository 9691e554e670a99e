package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName    = "Briefbox"
	AppVersion = "1.0.0"
)

// UserAgent identifies Briefbox to the providers it polls.
var UserAgent = AppName + "/" + AppVersion + " (+https://briefbox.example)"

// Environment names recognized for the digest subject prefix.
const (
	EnvProduction  = "production"
	EnvStaging     = "staging"
	EnvDevelopment = "development"
)

type Config struct {
	DBPath      string
	DataDir     string
	Environment string

	// Pipeline cadence and windows.
	RunInterval   time.Duration
	FetchInterval time.Duration
	CleanInterval time.Duration
	Retention     time.Duration

	// Cleaner batching: channels per local query, external ids per provider call.
	CleanLocalBatch    int
	CleanProviderBatch int

	PollConcurrency int

	GithubAPIBase  string
	TwitterAPIBase string
	TwitterToken   string

	EmailAPIBase  string
	EmailAPIToken string
	EmailFrom     string
}

func Load() Config {
	// A missing .env is fine; real deployments configure via the environment.
	_ = godotenv.Load()

	dataDir := getEnv("BRIEFBOX_DATA_DIR", "./data")
	path := getEnv("BRIEFBOX_DB_PATH", filepath.Join(dataDir, "briefbox.db"))

	return Config{
		DBPath:      filepath.Clean(path),
		DataDir:     filepath.Clean(dataDir),
		Environment: getEnv("BRIEFBOX_ENV", EnvDevelopment),

		RunInterval:   getDuration("BRIEFBOX_RUN_INTERVAL", 15*time.Minute),
		FetchInterval: getDuration("BRIEFBOX_FETCH_INTERVAL", 6*time.Hour),
		CleanInterval: getDuration("BRIEFBOX_CLEAN_INTERVAL", 24*time.Hour),
		Retention:     getDuration("BRIEFBOX_RETENTION", 14*24*time.Hour),

		CleanLocalBatch:    getInt("BRIEFBOX_CLEAN_LOCAL_BATCH", 30),
		CleanProviderBatch: getInt("BRIEFBOX_CLEAN_PROVIDER_BATCH", 100),

		PollConcurrency: getInt("BRIEFBOX_POLL_CONCURRENCY", 4),

		GithubAPIBase:  getEnv("BRIEFBOX_GITHUB_API", "https://api.github.com"),
		TwitterAPIBase: getEnv("BRIEFBOX_TWITTER_API", "https://api.twitter.com"),
		TwitterToken:   os.Getenv("BRIEFBOX_TWITTER_TOKEN"),

		EmailAPIBase:  getEnv("BRIEFBOX_EMAIL_API", "https://api.postmarkapp.com"),
		EmailAPIToken: os.Getenv("BRIEFBOX_EMAIL_TOKEN"),
		EmailFrom:     getEnv("BRIEFBOX_EMAIL_FROM", "digests@briefbox.example"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
