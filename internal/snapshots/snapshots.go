// Package snapshots records the rankings of a game once a day so that
// the progress of every player can be charted.
package snapshots

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketwatch-backend/internal/components/assert"
	"marketwatch-backend/internal/components/chrono"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/internal/snapshots/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("marketwatch.internal.snapshots")

const (
	report_db_query    = "db.query"
	report_record      = "record"
	report_record_size = "record.rankings"
)

// Scraper is the part of marketwatch.Client a snapshot needs.
type Scraper interface {
	Game(ctx context.Context, gameId string) (marketwatch.Game, error)
	Leaderboard(ctx context.Context, gameId string) ([]marketwatch.Ranking, error)
}

type Store struct {
	db     *db.Queries
	makeTx db.MakeTx
	clock  chrono.TimeAPI
	tel    telemetry.API
}

func NewStore(database *sql.DB, clock chrono.TimeAPI, tel telemetry.API) Store {
	assert.NotNil(database, "database")
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")

	return Store{
		db:     db.New(database),
		makeTx: db.NewMakeTx(database),
		clock:  clock,
		tel:    telemetry.NewScopedAPI("snapshots", tel),
	}
}

// Record scrapes a game and its leaderboard and stores them as today's
// snapshot, replacing any snapshot already taken today.
func (s Store) Record(ctx context.Context, scraper Scraper, gameId string) ([]marketwatch.Ranking, error) {
	ctx, span := tracer.Start(ctx, "Record")
	defer span.End()
	span.SetAttributes(attribute.String("game", gameId))

	game, err := scraper.Game(ctx, gameId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_record, fmt.Errorf("game: %w", err), gameId)
		return nil, err
	}
	rankings, err := scraper.Leaderboard(ctx, gameId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.tel.ReportBroken(report_record, fmt.Errorf("leaderboard: %w", err), gameId)
		return nil, err
	}

	now := s.clock.Now()
	err = s.write(ctx, gameId, now, game, rankings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.tel.ReportCount(report_record_size, int64(len(rankings)))
	return rankings, nil
}

func (s Store) write(ctx context.Context, gameId string, now time.Time, game marketwatch.Game, rankings []marketwatch.Ranking) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	after, before := chrono.DayBounds(now, s.clock.Location())
	err = tx.DeleteGameSnapshotsIn(ctx, db.DeleteGameSnapshotsInParams{
		GameID: gameId,
		After:  after,
		Before: before,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteGameSnapshotsIn", gameId)
		return err
	}
	err = tx.DeleteRankingSnapshotsIn(ctx, db.DeleteRankingSnapshotsInParams{
		GameID: gameId,
		After:  after,
		Before: before,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "DeleteRankingSnapshotsIn", gameId)
		return err
	}

	err = tx.CreateGameSnapshot(ctx, db.CreateGameSnapshotParams{
		GameID:         gameId,
		Time:           now.Unix(),
		Title:          game.Title,
		Players:        int64(game.Players),
		Rank:           int64(game.Rank),
		PortfolioValue: game.Profile.Value,
		GainPercentage: game.Profile.GainPercentage,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateGameSnapshot", gameId)
		return err
	}

	for _, r := range rankings {
		param := db.CreateRankingSnapshotParams{
			GameID:         gameId,
			Time:           now.Unix(),
			Rank:           int64(r.Rank),
			Player:         r.Player,
			PlayerPub:      r.PlayerPub(),
			PortfolioValue: r.PortfolioValue,
			GainPercentage: r.GainPercentage,
			Transactions:   int64(r.Transactions),
			Gain:           r.Gain,
		}
		err = tx.CreateRankingSnapshot(ctx, param)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "CreateRankingSnapshot", param)
			return err
		}
	}

	return commit()
}

type Point struct {
	Time           time.Time
	Rank           int
	PortfolioValue float64
	GainPercentage float64
}

type PlayerSeries struct {
	Player string
	Pub    string
	Points []Point
}

type History struct {
	GameId string
	Title  string
	// the logged in account's own standing
	Own     []Point
	Players []PlayerSeries
}

// History returns every snapshot of a game, players are ordered by name
// and their points by time.
func (s Store) History(ctx context.Context, gameId string) (History, error) {
	ctx, span := tracer.Start(ctx, "History")
	defer span.End()
	span.SetAttributes(attribute.String("game", gameId))

	games, err := s.db.GetGameSnapshots(ctx, gameId)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetGameSnapshots", gameId)
		return History{}, err
	}
	rankings, err := s.db.GetRankingSnapshots(ctx, gameId)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetRankingSnapshots", gameId)
		return History{}, err
	}

	history := History{
		GameId:  gameId,
		Own:     []Point{},
		Players: []PlayerSeries{},
	}
	for _, g := range games {
		history.Title = g.Title
		history.Own = append(history.Own, Point{
			Time:           time.Unix(g.Time, 0).In(s.clock.Location()),
			Rank:           int(g.Rank),
			PortfolioValue: g.PortfolioValue,
			GainPercentage: g.GainPercentage,
		})
	}

	// rows are sorted by player, so all the rows of a player are next to
	// each other
	var last *PlayerSeries
	for _, r := range rankings {
		if last == nil || last.Player != r.Player || last.Pub != r.PlayerPub {
			history.Players = append(history.Players, PlayerSeries{
				Player: r.Player,
				Pub:    r.PlayerPub,
			})
			last = &history.Players[len(history.Players)-1]
		}
		last.Points = append(last.Points, Point{
			Time:           time.Unix(r.Time, 0).In(s.clock.Location()),
			Rank:           int(r.Rank),
			PortfolioValue: r.PortfolioValue,
			GainPercentage: r.GainPercentage,
		})
	}
	return history, nil
}

// TrackedGames lists the games that have at least one snapshot.
func (s Store) TrackedGames(ctx context.Context) ([]string, error) {
	games, err := s.db.GetTrackedGames(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetTrackedGames")
		return nil, err
	}
	return games, nil
}
