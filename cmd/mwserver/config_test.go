package main

import (
	"testing"

	"marketwatch-backend/internal/server"

	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("MARKETWATCH_USERNAME", "student@example.com")
	t.Setenv("MARKETWATCH_PASSWORD", "hunter2")
	t.Setenv("MARKETWATCH_GAME_ID", "algoets-h2023")

	var cfg Config
	cfg.applyEnv()
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, server.Credentials{Email: "student@example.com", Password: "hunter2"}, cfg.DefaultCredentials)
	require.Equal(t, []string{"algoets-h2023"}, cfg.Snapshots.Games)

	configured := Config{
		Port:               9000,
		DefaultCredentials: server.Credentials{Email: "other@example.com", Password: "pw"},
		Snapshots:          SnapshotsConfig{Games: []string{"econ-101"}},
	}
	configured.applyEnv()
	require.Equal(t, 9000, configured.Port)
	require.Equal(t, "other@example.com", configured.DefaultCredentials.Email)
	require.Equal(t, []string{"econ-101"}, configured.Snapshots.Games)
}
