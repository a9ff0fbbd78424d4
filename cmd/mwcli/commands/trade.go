package commands

import (
	"fmt"
	"strconv"

	"marketwatch-backend/internal/scrapers/marketwatch"

	"github.com/spf13/cobra"
)

var (
	tradeLimit float64
	tradeStop  float64
	tradeDay   bool
)

func init() {
	tradeCmd.Flags().Float64Var(&tradeLimit, "limit", 0, "Submit a limit order at this price.")
	tradeCmd.Flags().Float64Var(&tradeStop, "stop", 0, "Submit a stop order at this price.")
	tradeCmd.Flags().BoolVar(&tradeDay, "day", false, "Expire the order at the end of the day.")
	tradeCmd.MarkFlagsMutuallyExclusive("limit", "stop")
	rootCmd.AddCommand(tradeCmd)
}

var tradeCmd = &cobra.Command{
	Use:   "trade <buy|sell|short|cover> <ticker> <shares> [--limit <price> | --stop <price>] [--day]",
	Short: "Submits an order.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderType, err := marketwatch.ParseOrderType(args[0])
		if err != nil {
			return err
		}
		ticker := args[1]
		shares, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("shares must be a whole number: %w", err)
		}

		req := marketwatch.OrderRequest{
			Ticker:    ticker,
			Shares:    shares,
			OrderType: orderType,
		}
		switch {
		case cmd.Flags().Changed("limit"):
			marketwatch.WithLimit(tradeLimit)(&req)
		case cmd.Flags().Changed("stop"):
			marketwatch.WithStop(tradeStop)(&req)
		}
		if tradeDay {
			marketwatch.WithTerm(marketwatch.TERM_DAY)(&req)
		}

		s, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer s.close()

		req.GameId, err = s.gameId(cmd.Context())
		if err != nil {
			return err
		}
		status, err := s.client.SubmitOrder(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Println(status)
		return nil
	},
}
