package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsProduction bool

	// client-side endpoints; resolved once at startup
	BackendBaseURL string
	WSBaseURL      string
	SessionToken   string

	// stub server
	Port      string
	JWTSecret string

	// realtime tunables. The self-echo window and near-bottom threshold are
	// deliberately configurable: the defaults only need to be small enough to
	// catch true self-echoes / true near-bottom positions.
	SelfEchoWindowMS      int
	NearBottomPx          int
	EscalationPollSeconds int
	HTTPTimeoutSeconds    int

	// stub tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
)

func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")

	// do not load .env file in production
	if AppEnv == "production" {
		return
	}

	// non-production: .env is optional, process env still wins
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	IsProduction = AppEnv == "production"

	BackendBaseURL = getenvOr("BACKEND_BASE_URL", "http://localhost:8000")
	WSBaseURL = getenvOr("WS_BASE_URL", "ws://localhost:8000")
	SessionToken = os.Getenv("SESSION_TOKEN")

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = getenvOr("PORT", "8000")

	// Tunables with defaults
	SelfEchoWindowMS = atoiOr(os.Getenv("SELF_ECHO_WINDOW_MS"), 1000)
	NearBottomPx = atoiOr(os.Getenv("NEAR_BOTTOM_PX"), 100)
	EscalationPollSeconds = atoiOr(os.Getenv("ESCALATION_POLL_SECONDS"), 3)
	HTTPTimeoutSeconds = atoiOr(os.Getenv("HTTP_TIMEOUT_SECONDS"), 15)
	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 20)

	// safety: stub must never run in production with an empty signing key
	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s backend=%s ws=%s", AppEnv, BackendBaseURL, WSBaseURL)
	log.Printf("[config] selfEchoWindow=%dms nearBottom=%dpx poll=%ds httpTimeout=%ds",
		SelfEchoWindowMS, NearBottomPx, EscalationPollSeconds, HTTPTimeoutSeconds)
}

func getenvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
