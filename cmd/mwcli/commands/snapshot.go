package commands

import (
	"fmt"

	"marketwatch-backend/internal/snapshots"
	snapshotsdb "marketwatch-backend/internal/snapshots/db"
	"marketwatch-backend/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	snapshotCmd.AddCommand(snapshotHistoryCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func openStore(s session) (snapshots.Store, func(), error) {
	cfg := s.config.Snapshots
	if cfg.File == "" && cfg.Url == "" {
		cfg.File = "<dev_state>/snapshots.db"
	}
	database, err := sqliteutil.OpenDB(snapshotsdb.Schema, cfg)
	if err != nil {
		return snapshots.Store{}, nil, err
	}
	return snapshots.NewStore(database, s.clock, s.tel), func() { database.Close() }, nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Records today's leaderboard of a game.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer s.close()

		gameId, err := s.gameId(cmd.Context())
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(s)
		if err != nil {
			return err
		}
		defer closeStore()

		rankings, err := store.Record(cmd.Context(), s.client, gameId)
		if err != nil {
			return err
		}
		fmt.Printf("recorded %d rankings of %s\n", len(rankings), gameId)
		return nil
	},
}

var snapshotHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints your recorded standing in a game over time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer s.close()

		gameId, err := s.gameId(cmd.Context())
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(s)
		if err != nil {
			return err
		}
		defer closeStore()

		history, err := store.History(cmd.Context(), gameId)
		if err != nil {
			return err
		}

		t := NewTable()
		t.SetTitle(history.Title)
		t.AppendHeader(table.Row{"Date", "Rank", "Value", "Gain %"})
		t.SetColumnConfigs(alignRight(2, 3, 4))
		for _, p := range history.Own {
			t.AppendRow(table.Row{p.Time.Format("2006-01-02"), p.Rank, money(p.PortfolioValue), percent(p.GainPercentage)})
		}
		t.Render()
		return nil
	},
}
