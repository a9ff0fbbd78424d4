package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd, gamesCmd, gameCmd, settingsCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Checks that the configured credentials can log in.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer s.close()

		name, _, err := s.client.CheckLogin(cmd.Context())
		if err != nil {
			return err
		}
		userId, err := s.client.UserId(cmd.Context(), s.config.Username)
		if err != nil {
			s.tel.ReportWarning("mwcli: user-id", err)
		}
		fmt.Printf("logged in as %s (%s)\n", name, userId)
		return nil
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "Lists the games you have joined.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer s.close()

		games, err := s.client.Games(cmd.Context())
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Id", "Name", "Return", "Total Return", "Rank", "Players", "Ends"})
		t.SetColumnConfigs(alignRight(3, 4, 5, 6))
		for _, g := range games {
			t.AppendRow(table.Row{g.Id, g.Name, percent(g.Return), percent(g.TotalReturn), g.Rank, g.Players, g.End})
		}
		t.Render()
		return nil
	},
}

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Shows a game and your standing in it.",
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
		game, err := s.client.Game(cmd.Context(), gameId)
		if err != nil {
			return err
		}

		t := NewTable()
		t.SetTitle(game.Title)
		t.AppendRows([]table.Row{
			{"Id", game.Id},
			{"Url", game.Url},
			{"Start", game.StartDate},
			{"End", game.EndDate},
			{"Creator", game.Creator},
			{"Players", game.Players},
			{"Rank", game.Rank},
		})
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Portfolio Value", money(game.Profile.Value)},
			{"Gain", fmt.Sprintf("%s (%s)", money(game.Profile.Gain), percent(game.Profile.GainPercentage))},
			{"Return", percent(game.Profile.Return)},
			{"Cash Remaining", money(game.Profile.CashRemaining)},
			{"Buying Power", money(game.Profile.BuyingPower)},
			{"Shorts Reserve", money(game.Profile.ShortsReserve)},
			{"Cash Borrowed", money(game.Profile.CashBorrowed)},
		})
		t.Render()
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Shows the rules of a game.",
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
		settings, err := s.client.GameSettings(cmd.Context(), gameId)
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendRows([]table.Row{
			{"Game Public", settings.GamePublic},
			{"Portfolios Public", settings.PortfoliosPublic},
			{"Start Balance", money(settings.StartBalance)},
			{"Commission", money(settings.Commission)},
			{"Credit Interest Rate", percent(settings.CreditInterestRate)},
			{"Leverage Debt Interest Rate", percent(settings.LeverageDebtInterestRate)},
			{"Minimum Stock Price", money(settings.MinimumStockPrice)},
			{"Maximum Stock Price", money(settings.MaximumStockPrice)},
			{"Short Selling", settings.ShortSelling},
			{"Margin Trading", settings.MarginTrading},
			{"Limit Orders", settings.LimitOrders},
			{"Stop Loss Orders", settings.StopLossOrders},
			{"Partial Shares", settings.PartialShareTrading},
		})
		t.Render()
		return nil
	},
}
