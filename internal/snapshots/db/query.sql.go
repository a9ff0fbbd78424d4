package db

import (
	"context"
)

const createGameSnapshot = `-- name: CreateGameSnapshot :exec
insert into game_snapshot(game_id, time, title, players, rank, portfolio_value, gain_percentage)
values (?, ?, ?, ?, ?, ?, ?)
`

type CreateGameSnapshotParams struct {
	GameID         string
	Time           int64
	Title          string
	Players        int64
	Rank           int64
	PortfolioValue float64
	GainPercentage float64
}

func (q *Queries) CreateGameSnapshot(ctx context.Context, arg CreateGameSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createGameSnapshot,
		arg.GameID,
		arg.Time,
		arg.Title,
		arg.Players,
		arg.Rank,
		arg.PortfolioValue,
		arg.GainPercentage,
	)
	return err
}

const createRankingSnapshot = `-- name: CreateRankingSnapshot :exec
insert into ranking_snapshot(game_id, time, rank, player, player_pub, portfolio_value, gain_percentage, transactions, gain)
values (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRankingSnapshotParams struct {
	GameID         string
	Time           int64
	Rank           int64
	Player         string
	PlayerPub      string
	PortfolioValue float64
	GainPercentage float64
	Transactions   int64
	Gain           float64
}

func (q *Queries) CreateRankingSnapshot(ctx context.Context, arg CreateRankingSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createRankingSnapshot,
		arg.GameID,
		arg.Time,
		arg.Rank,
		arg.Player,
		arg.PlayerPub,
		arg.PortfolioValue,
		arg.GainPercentage,
		arg.Transactions,
		arg.Gain,
	)
	return err
}

const deleteGameSnapshotsIn = `-- name: DeleteGameSnapshotsIn :exec
delete from game_snapshot
where game_id = ?1 and time >= ?2 and time < ?3
`

type DeleteGameSnapshotsInParams struct {
	GameID string
	After  int64
	Before int64
}

func (q *Queries) DeleteGameSnapshotsIn(ctx context.Context, arg DeleteGameSnapshotsInParams) error {
	_, err := q.db.ExecContext(ctx, deleteGameSnapshotsIn, arg.GameID, arg.After, arg.Before)
	return err
}

const deleteRankingSnapshotsIn = `-- name: DeleteRankingSnapshotsIn :exec
delete from ranking_snapshot
where game_id = ?1 and time >= ?2 and time < ?3
`

type DeleteRankingSnapshotsInParams struct {
	GameID string
	After  int64
	Before int64
}

func (q *Queries) DeleteRankingSnapshotsIn(ctx context.Context, arg DeleteRankingSnapshotsInParams) error {
	_, err := q.db.ExecContext(ctx, deleteRankingSnapshotsIn, arg.GameID, arg.After, arg.Before)
	return err
}

const getGameSnapshots = `-- name: GetGameSnapshots :many
select game_id, time, title, players, rank, portfolio_value, gain_percentage from game_snapshot
where game_id = ?
order by time asc
`

func (q *Queries) GetGameSnapshots(ctx context.Context, gameID string) ([]GameSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, getGameSnapshots, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GameSnapshot
	for rows.Next() {
		var i GameSnapshot
		if err := rows.Scan(
			&i.GameID,
			&i.Time,
			&i.Title,
			&i.Players,
			&i.Rank,
			&i.PortfolioValue,
			&i.GainPercentage,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRankingSnapshots = `-- name: GetRankingSnapshots :many
select game_id, time, rank, player, player_pub, portfolio_value, gain_percentage, transactions, gain from ranking_snapshot
where game_id = ?
order by player asc, player_pub asc, time asc
`

func (q *Queries) GetRankingSnapshots(ctx context.Context, gameID string) ([]RankingSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, getRankingSnapshots, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RankingSnapshot
	for rows.Next() {
		var i RankingSnapshot
		if err := rows.Scan(
			&i.GameID,
			&i.Time,
			&i.Rank,
			&i.Player,
			&i.PlayerPub,
			&i.PortfolioValue,
			&i.GainPercentage,
			&i.Transactions,
			&i.Gain,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTrackedGames = `-- name: GetTrackedGames :many
select distinct game_id from game_snapshot
order by game_id asc
`

func (q *Queries) GetTrackedGames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getTrackedGames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var game_id string
		if err := rows.Scan(&game_id); err != nil {
			return nil, err
		}
		items = append(items, game_id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
