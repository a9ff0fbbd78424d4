package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var portfolioPub string

func init() {
	portfolioCmd.Flags().StringVar(&portfolioPub, "pub", "", "Show another player's portfolio by the pub id in their leaderboard link.")
	rootCmd.AddCommand(portfolioCmd, positionsCmd)
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio [--pub <player>]",
	Short: "Shows the holdings in a portfolio.",
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
		portfolio, err := s.client.PlayerPortfolio(cmd.Context(), gameId, portfolioPub)
		if err != nil {
			return err
		}

		t := NewTable()
		t.SetTitle("Value %s, Return %s", money(portfolio.Profile.Value), percent(portfolio.Profile.Return))
		t.AppendHeader(table.Row{"Symbol", "Quantity", "Side", "Holding", "Price", "Change", "Value", "Gain"})
		t.SetColumnConfigs(alignRight(2, 4, 5, 6, 7, 8))
		for _, h := range portfolio.Holdings {
			t.AppendRow(table.Row{
				h.Ticker,
				h.Quantity,
				h.Side,
				percent(h.HoldingPercentage),
				money(h.Price),
				percent(h.PriceChangePercentage),
				money(h.Value),
				money(h.Gain),
			})
		}
		t.Render()
		return nil
	},
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Lists open positions from the holdings download.",
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
		positions, err := s.client.Positions(cmd.Context(), gameId)
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Symbol", "Type", "Quantity", "Entry Price"})
		t.SetColumnConfigs(alignRight(3, 4))
		for _, p := range positions {
			t.AppendRow(table.Row{p.Ticker, p.OrderType, p.Quantity, money(p.EntryPrice)})
		}
		t.Render()
		return nil
	},
}
