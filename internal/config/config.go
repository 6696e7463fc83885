package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DatabaseURL  string
	SetupTimeout time.Duration
	ShotTimeout  time.Duration
	FinishedTTL  time.Duration
	LobbyRefresh time.Duration
}

// Load reads .env when present, then the environment. Every knob has a
// default good enough to run locally with no env at all.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:         envString("ADDR", ":8080"),
		DatabaseURL:  envString("DATABASE_URL", ""),
		SetupTimeout: envSeconds("SETUP_TIMEOUT_SEC", 60),
		ShotTimeout:  envSeconds("SHOT_TIMEOUT_SEC", 30),
		FinishedTTL:  envSeconds("FINISHED_TTL_SEC", 60),
		LobbyRefresh: envSeconds("LOBBY_REFRESH_SEC", 5),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
