// Package config loads settings from the environment, optionally seeded from
// a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL     string
	APIKey     string
	Season     int
	RedisURL   string
	LogLevel   string
	ServerPort string
}

// Load reads .env if present, then the environment. Only a malformed value is
// an error; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:     getEnv("SPLITS_API_URL", "http://localhost:8080"),
		APIKey:     getEnv("SPLITS_API_KEY", ""),
		RedisURL:   getEnv("REDIS_URL", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ServerPort: getEnv("SERVER_PORT", "8090"),
	}

	season := getEnv("SPLITS_SEASON", "")
	if season == "" {
		cfg.Season = DefaultSeason(time.Now())
	} else {
		n, err := strconv.Atoi(season)
		if err != nil || n < 1871 {
			return nil, fmt.Errorf("SPLITS_SEASON: invalid season %q", season)
		}
		cfg.Season = n
	}
	return cfg, nil
}

// DefaultSeason is the most recent season with games: the current year from
// April on, the previous year before that.
func DefaultSeason(now time.Time) int {
	if now.Month() < time.April {
		return now.Year() - 1
	}
	return now.Year()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
