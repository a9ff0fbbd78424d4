package main

import (
	"context"
	"log/slog"

	"marketwatch-backend/internal/components/chrono"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/notify"
	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/internal/server"
	"marketwatch-backend/internal/sessions"
	"marketwatch-backend/internal/snapshots"
	snapshotsdb "marketwatch-backend/internal/snapshots/db"
	"marketwatch-backend/lib/sqliteutil"
)

// sessionScraper logs in through the session cache on every call so the
// daemon survives session expiry, a session marketwatch has dropped is
// forgotten.
type sessionScraper struct {
	sessions    sessions.Cache
	credentials server.Credentials
}

func (s sessionScraper) client(ctx context.Context) (*marketwatch.Client, error) {
	return s.sessions.Get(ctx, s.credentials.Email, s.credentials.Password)
}

func (s sessionScraper) check(err error) error {
	if sessions.Expired(err) {
		s.sessions.Forget(s.credentials.Email, s.credentials.Password)
	}
	return err
}

func (s sessionScraper) Game(ctx context.Context, gameId string) (marketwatch.Game, error) {
	client, err := s.client(ctx)
	if err != nil {
		return marketwatch.Game{}, err
	}
	game, err := client.Game(ctx, gameId)
	return game, s.check(err)
}

func (s sessionScraper) Leaderboard(ctx context.Context, gameId string) ([]marketwatch.Ranking, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	rankings, err := client.Leaderboard(ctx, gameId)
	return rankings, s.check(err)
}

// InitSnapshots opens the snapshot store and, if games are configured,
// schedules them to be recorded.
func InitSnapshots(
	ctx context.Context,
	cfg Config,
	cache sessions.Cache,
	clock chrono.TimeAPI,
	tel telemetry.API,
	initialRecord bool,
) (snapshots.Store, error) {
	dbConfig := cfg.Snapshots.Database
	if dbConfig.File == "" && dbConfig.Url == "" {
		dbConfig.File = "<dev_state>/snapshots.db"
	}
	database, err := sqliteutil.OpenDB(snapshotsdb.Schema, dbConfig)
	if err != nil {
		return snapshots.Store{}, err
	}
	go func() {
		<-ctx.Done()
		database.Close()
	}()
	store := snapshots.NewStore(database, clock, tel)

	if len(cfg.Snapshots.Games) == 0 {
		return store, nil
	}
	if cfg.DefaultCredentials.Email == "" {
		slog.Warn("snapshot games are configured without default credentials, they will not be recorded")
		return store, nil
	}

	opts := snapshots.DaemonOptions{
		Games:      cfg.Snapshots.Games,
		Schedule:   cfg.Snapshots.Schedule,
		Recipients: cfg.Snapshots.Recipients,
	}
	if cfg.Smtp.Server != "" && len(cfg.Snapshots.Recipients) > 0 {
		opts.Notifier = notify.NewMailer(cfg.Smtp, tel)
	}

	daemon := snapshots.NewDaemon(
		ctx,
		store,
		sessionScraper{sessions: cache, credentials: cfg.DefaultCredentials},
		chrono.NewStandardCron(ctx, clock, tel),
		opts,
		tel,
	)
	err = daemon.Start()
	if err != nil {
		return snapshots.Store{}, err
	}
	if initialRecord {
		go daemon.RecordAll(ctx)
	}
	return store, nil
}
