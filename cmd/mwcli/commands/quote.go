package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(priceCmd, searchCmd)
}

var priceCmd = &cobra.Command{
	Use:   "price <ticker...>",
	Short: "Prints the latest price of each ticker.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.close()

		for _, ticker := range args {
			quote, err := s.client.Price(cmd.Context(), ticker)
			if err != nil {
				return fmt.Errorf("%s: %w", ticker, err)
			}
			fmt.Println(quote)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches for instruments by name or symbol.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.close()

		results, err := s.client.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Symbol", "Company", "Exchange", "Country", "Type"})
		for _, r := range results {
			t.AppendRow(table.Row{r.Ticker, r.Company, r.Exchange, r.Country, r.Type})
		}
		t.Render()
		return nil
	},
}
