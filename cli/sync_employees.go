package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hikvision-integration/seeder"
)

// NewSyncEmployeesCommand creates the sync-employees command.
func NewSyncEmployeesCommand(rootOpts *RootOptions) *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "sync-employees",
		Short: "Fill a company's employee directory from Bitrix24",
		Long: `Lists the company's active Bitrix24 users and adds the ones missing from
its employee directory. Existing entries are left as they are.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			company, err := a.registry.ByID(companyID)
			if err != nil {
				return err
			}
			store, err := a.stores.For(company)
			if err != nil {
				return err
			}
			res, err := seeder.SeedEmployees(ctx, a.bitrix, store, company, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: fetched %d, added %d, skipped %d\n", company.Name, res.Fetched, res.Added, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
