package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagRunFormat string

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass now",
		Args:  cobra.NoArgs,
		RunE:  runOnce,
	}
	cmd.Flags().StringVar(&flagRunFormat, "format", "text", "Output format: text or json")
	return cmd
}

func runOnce(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagRunFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagRunFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runner, err := newRunner(cfg, nil)
	if err != nil {
		return err
	}

	sum, runErr := runner.Run(cmd.Context())
	if sum != nil {
		if err := WriteSummary(cmd.OutOrStdout(), sum, format); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return runErr
}
