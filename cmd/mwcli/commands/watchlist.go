package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchlistCmd)
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist [id]",
	Short: "Lists your watchlists, or the items of one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer s.close()

		if len(args) == 0 {
			lists, err := s.client.Watchlists(cmd.Context())
			if err != nil {
				return err
			}
			t := NewTable()
			t.AppendHeader(table.Row{"Id", "Name"})
			for _, l := range lists {
				t.AppendRow(table.Row{l.Id, l.Name})
			}
			t.Render()
			return nil
		}

		list, err := s.client.Watchlist(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t := NewTable()
		t.SetTitle(list.Name)
		t.AppendHeader(table.Row{"Symbol", "Name", "Price", "Change", "Change %"})
		t.SetColumnConfigs(alignRight(3, 4, 5))
		for _, item := range list.Items {
			t.AppendRow(table.Row{item.Ticker, item.Name, money(item.Price), money(item.Change), percent(item.ChangePercentage)})
		}
		t.Render()
		return nil
	},
}
