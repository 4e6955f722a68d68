package commands

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "ledger Centro Medicina Integral", []string{"ledger", "Centro", "Medicina", "Integral"}},
		{"double quotes", `seats "Campus Centro" Medicina Integral AC=2`, []string{"seats", "Campus Centro", "Medicina", "Integral", "AC=2"}},
		{"single quotes", `load 'my file.csv' -u Centro`, []string{"load", "my file.csv", "-u", "Centro"}},
		{"extra spaces", "  calls   1  ", []string{"calls", "1"}},
		{"empty quoted argument", `export 1 -o ""`, []string{"export", "1", "-o", ""}},
		{"quote inside word", `seats Campus" "Norte`, []string{"seats", "Campus Norte"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandLine_UnclosedQuote(t *testing.T) {
	_, err := parseCommandLine(`seats "Campus Centro Medicina`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed quote")
}

func TestRunInteractive_RunsCommandsUntilExit(t *testing.T) {
	var got [][]string
	echo := &cobra.Command{
		Use:  "echo <words>...",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			got = append(got, args)
			return nil
		},
	}
	echo.Flags().Bool("upper", false, "")

	input := strings.Join([]string{
		`echo "Campus Centro" Medicina`,
		`echo --upper x`,
		`echo`,
		`unknown`,
		`exit`,
		`echo never`,
	}, "\n")

	err := runInteractive(strings.NewReader(input), map[string]*cobra.Command{"echo": echo})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"Campus Centro", "Medicina"}, {"x"}}, got)
}

func TestRunInteractive_ResetsFlagsBetweenRuns(t *testing.T) {
	var seen []bool
	cmd := &cobra.Command{
		Use: "flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _ := cmd.Flags().GetBool("all")
			seen = append(seen, v)
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "")

	err := runInteractive(strings.NewReader("flag --all\nflag\n"), map[string]*cobra.Command{"flag": cmd})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, seen)
}
