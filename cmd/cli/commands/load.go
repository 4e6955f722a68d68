package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/services"
)

// LoadCmd creates the load command
func LoadCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file.csv>",
		Short: "Load candidates from a CSV file",
		Long: `Load candidates from a CSV file (UTF-8, UTF-16 or Windows-1252; comma, semicolon or tab separated).

Files with Campus, Curso and Turno columns put each row in its own pool. Otherwise the
pool must be given with --unit, --program and --shift.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, _, err := poolFromFlags(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			result, err := services.LoadCandidatesFromCSV(app.Ctx, app.Database, app.Cfg, app.Logger, f, pool)
			if err != nil {
				return err
			}

			printLoadResult(result)
			return nil
		},
	}

	addPoolFlags(cmd)
	return cmd
}

// ImportCmd creates the import command
func ImportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import candidates from the configured Google Sheets tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, _, err := poolFromFlags(cmd)
			if err != nil {
				return err
			}

			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			result, err := services.ImportCandidatesFromSheet(app.Ctx, app.Database, sheets, app.Cfg, app.Logger, pool)
			if err != nil {
				return err
			}

			printLoadResult(result)
			return nil
		},
	}

	addPoolFlags(cmd)
	return cmd
}

func printLoadResult(result *services.LoadResult) {
	fmt.Printf("\n✓ Loaded %d candidates\n\n", result.Loaded)

	pools := make([]model.PoolKey, 0, len(result.Pools))
	for pool := range result.Pools {
		pools = append(pools, pool)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].String() < pools[j].String() })

	for _, pool := range pools {
		fmt.Printf("  %-50s %d\n", pool, result.Pools[pool])
	}
	fmt.Println()
}
