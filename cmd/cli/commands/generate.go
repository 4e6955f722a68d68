package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the next call for one pool, or for every pool that is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			multiplier, _ := cmd.Flags().GetFloat64("multiplier")

			pool, ok, err := poolFromFlags(cmd)
			if err != nil {
				return err
			}
			var target *model.PoolKey
			if ok {
				target = &pool
			}

			result, err := services.GenerateCall(app.Ctx, app.Database, app.Cfg, app.Logger, target, multiplier, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Round %d generated (multiplier %.2f): %d candidates called\n\n",
				result.Round, result.Multiplier, result.Selected())

			for _, res := range result.Results {
				fmt.Printf("%s\n", res.Pool)
				fmt.Printf("  %-8s %8s %8s %8s %8s %8s %8s\n", "Quota", "Offered", "Eligible", "Filled", "Fallback", "Saldo", "Balance")
				for _, step := range res.Steps {
					fmt.Printf("  %-8s %8d %8d %8d %8d %8d %8d\n",
						step.Quota, step.Offered, step.Eligible, step.Filled, step.FallbackFilled, step.AdjustedSaldo, step.Balance)
				}
				if stranded := res.AdjustedSaldo.Stranded(); stranded > 0 {
					fmt.Printf("  ⚠️  %d seats could not be redistributed\n", stranded)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().Float64P("multiplier", "m", 0, "Seats offered per available seat (default from config)")
	addPoolFlags(cmd)
	return cmd
}

// DisqualifyCmd creates the disqualify command
func DisqualifyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "disqualify <cpf>...",
		Short: "Revoke selections of the latest round and return their seats",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.Disqualify(app.Ctx, app.Database, app.Cfg, app.Logger, args)
			if err != nil {
				return err
			}

			if len(result.Disqualified) == 0 {
				fmt.Println("\nNo selection of the latest round matched the given ids.")
			} else {
				fmt.Printf("\n✓ %d selections revoked:\n", len(result.Disqualified))
				for _, c := range result.Disqualified {
					fmt.Printf("  ✗ %s %s (%s)\n", c.ExternalID, c.Name, c.Pool)
				}
			}
			fmt.Printf("\nNext call will be round %d\n\n", result.NextRound)
			return nil
		},
	}
}
