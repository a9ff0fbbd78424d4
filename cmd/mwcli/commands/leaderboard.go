package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var leaderboardCsv bool

func init() {
	leaderboardCmd.Flags().BoolVar(&leaderboardCsv, "csv", false, "Print the site's csv download instead of a table.")
	rootCmd.AddCommand(leaderboardCmd)
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard [--csv]",
	Short: "Shows the rankings of a game.",
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

		if leaderboardCsv {
			contents, err := s.client.LeaderboardCSV(cmd.Context(), gameId)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(contents)
			return err
		}

		rankings, err := s.client.Leaderboard(cmd.Context(), gameId)
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Rank", "Player", "Pub", "Value", "Gain %", "Trades", "Gain"})
		t.SetColumnConfigs(alignRight(1, 4, 5, 6, 7))
		for _, r := range rankings {
			t.AppendRow(table.Row{
				r.Rank,
				r.Player,
				r.PlayerPub(),
				money(r.PortfolioValue),
				percent(r.GainPercentage),
				r.Transactions,
				money(r.Gain),
			})
		}
		t.Render()
		return nil
	},
}
