package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hikvision-integration/config"
	"hikvision-integration/scheduler"
	"hikvision-integration/service/workday"
)

// NewValidateConfigCommand creates the validate-config command.
func NewValidateConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate the companies file",
		Long: `Parses the companies file, checks every company and prints how each one
is wired: backend mode, storage, timezone and the next auto-close run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateConfig(cmd, opts)
		},
	}
	return cmd
}

func runValidateConfig(cmd *cobra.Command, opts *RootOptions) error {
	path := opts.CompaniesFile
	if path == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		path = cfg.CompaniesFile
	}

	registry, err := config.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	now := time.Now()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEVICE\tMODE\tSTORAGE\tTIMEZONE\tNEXT SWEEP")
	for _, c := range registry.All() {
		mode := workday.ModeLocal
		if c.UserWithBitrix {
			mode = workday.ModeRemote
		}
		next := "-"
		if c.AutoWorkdayClosing {
			sched, err := scheduler.ParseSchedule(c.ClosingScheduleTime, c.Location())
			if err != nil {
				return fmt.Errorf("company %s: %w", c.Name, err)
			}
			if t := sched.Next(now.In(c.Location())); !t.IsZero() {
				next = t.Format(time.RFC3339)
			} else {
				next = "never"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.IPAddress, mode, c.Storage, c.Timezone, next)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d companies OK\n", path, len(registry.All()))
	return nil
}
