// Package cli holds the hikvision-integration command tree.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands. Empty values fall back to
// the environment.
type RootOptions struct {
	CompaniesFile string
	DataDir       string
	LogLevel      string
}

// ValidLogLevels defines the accepted --log-level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hikvision-integration",
		Short: "HikVision to Bitrix24 workday bridge",
		Long: "Receives HikVision face-authentication events and opens or closes " +
			"employee workdays in Bitrix24 or in a local attendance store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel != "" && !isValidLogLevel(opts.LogLevel) {
				return fmt.Errorf("invalid log level %q: must be one of %v", opts.LogLevel, ValidLogLevels)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.CompaniesFile, "companies", "c", "", "companies file (overrides COMPANIES_FILE)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewValidateConfigCommand(opts))
	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewSyncEmployeesCommand(opts))

	return cmd
}

func isValidLogLevel(level string) bool {
	for _, l := range ValidLogLevels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}
