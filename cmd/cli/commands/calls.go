package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/services"
)

// CallsCmd creates the calls command
func CallsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls [round]",
		Short: "List a round's call, or the call history when no round is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				calls, err := services.ListCalls(app.Ctx, app.Database, app.Logger)
				if err != nil {
					return err
				}
				if len(calls) == 0 {
					fmt.Println("\nNo calls generated yet.")
					return nil
				}

				fmt.Printf("\n  %-5s %-50s %6s %8s %7s  %s\n", "Round", "Pool", "Mult", "Offered", "Filled", "Generated")
				for _, c := range calls {
					pool := model.PoolKey{Unit: c.Unit, Program: c.Program, Shift: c.Shift}
					fmt.Printf("  %-5d %-50s %6.2f %8d %7d  %s\n", c.Round, pool, c.Multiplier, c.Offered, c.Filled, c.GeneratedAt)
				}
				fmt.Println()
				return nil
			}

			round, err := parseRound(args[0])
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")

			candidates, err := services.ViewRound(app.Ctx, app.Database, app.Cfg, app.Logger, round, all)
			if err != nil {
				return err
			}

			fmt.Printf("\nRound %d: %d candidates\n\n", round, len(candidates))
			printCandidates(os.Stdout, candidates)
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Include candidates of the round that were later disqualified")
	return cmd
}

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <round>",
		Short: "Export a round's call list as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			round, err := parseRound(args[0])
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("chamada-%d.csv", round)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			n, err := services.ExportCall(app.Ctx, app.Database, app.Cfg, app.Logger, f, round, all)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %d candidates written to %s\n\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default chamada-<round>.csv)")
	cmd.Flags().Bool("all", false, "Include candidates of the round that were later disqualified")
	return cmd
}

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <round>",
		Short: "Publish a round's call list to the configured spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			round, err := parseRound(args[0])
			if err != nil {
				return err
			}

			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			result, err := services.PublishCall(app.Ctx, app.Database, sheets, app.Cfg, app.Logger, round)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %d candidates published to tab %q\n\n", result.Candidates, result.Tab)
			return nil
		},
	}
}

// NotifyCmd creates the notify command
func NotifyCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify <round>",
		Short: "Email every candidate called in a round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			round, err := parseRound(args[0])
			if err != nil {
				return err
			}

			gmail, err := app.GmailClient()
			if err != nil {
				return err
			}

			result, err := services.NotifyCall(app.Ctx, app.Database, gmail, app.Cfg, app.Logger, round, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %d notices sent\n", result.Sent)
			if !result.Deadline.IsZero() {
				fmt.Printf("Enrolment deadline announced: %s\n", result.Deadline.Format("02/01/2006"))
			}
			if len(result.NoEmail) > 0 {
				fmt.Printf("\n⚠️  %d called candidates have no email:\n", len(result.NoEmail))
				for _, id := range result.NoEmail {
					fmt.Printf("  - %s\n", id)
				}
			}
			if len(result.Failed) > 0 {
				fmt.Printf("\n⚠️  Failed to send %d emails:\n", len(result.Failed))
				for id, sendErr := range result.Failed {
					fmt.Printf("  ✗ %s: %v\n", id, sendErr)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

// ReportCmd creates the report command
func ReportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <unit> <program> <shift>",
		Short: "Show a pool's classification in every quota list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			var w io.Writer
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			candidates, err := services.ClassificationReport(app.Ctx, app.Database, app.Cfg, app.Logger, poolFromArgs(args), w)
			if err != nil {
				return err
			}

			if out != "" {
				fmt.Printf("\n✓ Classification of %d candidates written to %s\n\n", len(candidates), out)
				return nil
			}

			fmt.Println()
			printClassification(os.Stdout, candidates)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Write the report as CSV to this file")
	return cmd
}

// ResetCmd creates the reset command
func ResetCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every candidate, ledger and call of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("reset deletes the whole session; re-run with --yes to confirm")
			}

			if err := services.Reset(app.Ctx, app.Database, app.Logger); err != nil {
				return err
			}

			fmt.Println("\n✓ Session reset")
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm the reset")
	return cmd
}

func printCandidates(w io.Writer, candidates []*model.Candidate) {
	fmt.Fprintf(w, "  %-14s %-30s %8s %-7s %-7s %s\n", "CPF", "Name", "Score", "Quota", "Seat", "Status")
	for _, c := range candidates {
		seat := "-"
		if c.Assigned != nil {
			seat = c.Assigned.String()
		}
		fmt.Fprintf(w, "  %-14s %-30s %8.2f %-7s %-7s %s\n", c.ExternalID, truncate(c.Name, 30), c.Score, c.Declared, seat, c.Status)
	}
	fmt.Fprintln(w)
}

func printClassification(w io.Writer, candidates []*model.Candidate) {
	fmt.Fprintf(w, "  %-14s %8s %-7s %-12s %s\n", "CPF", "Score", "Quota", "Status", "Ranks")
	for _, c := range candidates {
		fmt.Fprintf(w, "  %-14s %8.2f %-7s %-12s %s\n", c.ExternalID, c.Score, c.Declared, c.Status, strings.Join(orderedRanks(c), " "))
	}
	fmt.Fprintln(w)
}

// orderedRanks renders "CODE:rank" for each list the candidate is in, in cascade order
func orderedRanks(c *model.Candidate) []string {
	var out []string
	for _, code := range sortedCodes(c.Classification) {
		out = append(out, code.String()+":"+strconv.Itoa(c.Classification[code]))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
