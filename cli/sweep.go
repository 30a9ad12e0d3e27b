package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hikvision-integration/service/workday"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	CompanyID string
	All       bool
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the auto-close sweep now",
		Long: `Closes every workday left open, the same way the scheduled job does.
Use --company for one company or --all for every company with auto-close on.`,
		Example: `  hikvision-integration sweep --company 1
  hikvision-integration sweep --all`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.CompanyID == "") == !opts.All {
				return errors.New("exactly one of --company or --all is required")
			}
			return runSweep(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CompanyID, "company", "", "company id")
	cmd.Flags().BoolVar(&opts.All, "all", false, "sweep every company with autoWorkdayClosing on")

	return cmd
}

func runSweep(cmd *cobra.Command, opts *SweepOptions) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	var ids []string
	if opts.All {
		for _, c := range a.registry.All() {
			if c.AutoWorkdayClosing {
				ids = append(ids, c.ID)
			}
		}
	} else {
		c, err := a.registry.ByID(opts.CompanyID)
		if err != nil {
			return err
		}
		ids = []string{c.ID}
	}

	var failed []error
	for _, id := range ids {
		report, err := a.sweeper.Sweep(ctx, id)
		printSweepReport(cmd.OutOrStdout(), report)
		if err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

func printSweepReport(w io.Writer, r workday.SweepReport) {
	fmt.Fprintf(w, "%s\tmode=%s\tchecked=%d\tclosed=%d\tfailed=%d\n", r.Company, r.Mode, r.Checked, r.Closed, r.Failed)
}
