package main

import (
	"os"

	"marketwatch-backend/internal/notify"
	"marketwatch-backend/internal/server"
	"marketwatch-backend/lib/sqliteutil"
)

type SnapshotsConfig struct {
	Database sqliteutil.Config `json:"database"`
	// game ids recorded on Schedule with the default credentials
	Games    []string `json:"games"`
	Schedule string   `json:"schedule"`
	// rank summaries are mailed here when smtp is configured
	Recipients []string `json:"recipients"`
}

type Config struct {
	Port int `json:"port"`
	// used for requests without basic auth and for snapshots
	DefaultCredentials server.Credentials `json:"default_credentials"`
	AllowedOrigins     []string           `json:"allowed_origins"`
	// requests per second per ip
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`
	// badger directory for cached pages, caching is off when empty
	Cache             string            `json:"cache"`
	SessionTtlMinutes int               `json:"session_ttl_minutes"`
	Snapshots         SnapshotsConfig   `json:"snapshots"`
	Smtp              notify.SmtpConfig `json:"smtp"`
}

// applyEnv fills what the config left empty from MARKETWATCH_USERNAME,
// MARKETWATCH_PASSWORD and MARKETWATCH_GAME_ID.
func (c *Config) applyEnv() {
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.DefaultCredentials.Email == "" {
		c.DefaultCredentials.Email = os.Getenv("MARKETWATCH_USERNAME")
	}
	if c.DefaultCredentials.Password == "" {
		c.DefaultCredentials.Password = os.Getenv("MARKETWATCH_PASSWORD")
	}
	if gameId := os.Getenv("MARKETWATCH_GAME_ID"); len(c.Snapshots.Games) == 0 && gameId != "" {
		c.Snapshots.Games = []string{gameId}
	}
}
