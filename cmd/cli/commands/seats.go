package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seatcall/seatcall/pkg/core/services"
)

// SeatsCmd creates the seats command
func SeatsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "seats <unit> <program> <shift> <CODE=N>...",
		Short:   "Define the seats offered per quota for a pool",
		Example: `  seats "Campus Centro" Medicina Integral AC=20 LI_PPI=4 LB_PPI=4 LB_Q=2`,
		Args:    cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			offered, err := parseSeats(args[3:])
			if err != nil {
				return err
			}

			view, err := services.DefineSeats(app.Ctx, app.Database, app.Cfg, app.Logger, poolFromArgs(args), offered)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Seats defined for %s\n", view.Pool)
			printLedger(view)
			return nil
		},
	}
}

// LedgerCmd creates the ledger command
func LedgerCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <unit> <program> <shift>",
		Short: "Show original and available seats of a pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := services.ViewLedger(app.Ctx, app.Database, app.Cfg, app.Logger, poolFromArgs(args))
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", view.Pool)
			printLedger(view)
			return nil
		},
	}
}

// RoundCmd creates the round command
func RoundCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "round <unit> <program> <shift>",
		Short: "Show the round the pool's next call will be",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := poolFromArgs(args)
			round, err := services.CurrentRound(app.Ctx, app.Database, app.Cfg, app.Logger, pool)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s: next call is round %d\n\n", pool, round)
			return nil
		},
	}
}

func printLedger(view *services.LedgerView) {
	fmt.Printf("Next round: %d\n\n", view.Round)
	fmt.Printf("  %-8s %8s %10s\n", "Quota", "Offered", "Available")
	offered, available := 0, 0
	for _, row := range view.Rows {
		fmt.Printf("  %-8s %8d %10d\n", row.Quota, row.Offered, row.Available)
		offered += row.Offered
		available += row.Available
	}
	fmt.Printf("  %-8s %8d %10d\n\n", "Total", offered, available)
}
