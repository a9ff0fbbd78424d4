package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var cancelAll bool

func init() {
	cancelCmd.Flags().BoolVar(&cancelAll, "all", false, "Cancel every pending order.")
	rootCmd.AddCommand(ordersCmd, cancelCmd)
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Lists pending orders.",
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
		orders, err := s.client.PendingOrders(cmd.Context(), gameId)
		if err != nil {
			return err
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Id", "Symbol", "Quantity", "Order", "Price Type", "Price"})
		t.SetColumnConfigs(alignRight(3, 6))
		for _, o := range orders {
			price := "-"
			if o.Price > 0 {
				price = money(o.Price)
			}
			t.AppendRow(table.Row{o.Id, o.Ticker, o.Quantity, o.OrderType, o.PriceType, price})
		}
		t.Render()
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <order id...> | --all",
	Short: "Cancels pending orders.",
	Args: func(cmd *cobra.Command, args []string) error {
		if cancelAll && len(args) > 0 {
			return fmt.Errorf("order ids cannot be given with --all")
		}
		if !cancelAll && len(args) == 0 {
			return fmt.Errorf("give at least one order id or --all")
		}
		return nil
	},
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

		if cancelAll {
			return s.client.CancelAllOrders(cmd.Context(), gameId)
		}
		for _, id := range args {
			err = s.client.CancelOrder(cmd.Context(), gameId, id)
			if err != nil {
				return fmt.Errorf("cancel %s: %w", id, err)
			}
			fmt.Println("cancelled", id)
		}
		return nil
	},
}
