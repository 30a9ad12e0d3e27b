package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hikvision-integration/models"
	"hikvision-integration/pkg/paseto"
	util "hikvision-integration/pkg/utils"
)

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "keygen",
		Short:        "Print a new PASETO_SECRET",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := util.GenerateBase64Key(util.PasetoKeySize)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Subject   string
	Role      string
	CompanyID string
	TTL       time.Duration
}

// NewTokenCommand creates the token command, which issues a bearer token for
// the report API signed with PASETO_SECRET.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a report API token",
		Example: `  hikvision-integration token --subject hr@jarvis --company 1
  hikvision-integration token --subject ops --role admin --ttl 720h`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(opts.RootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			key, err := cfg.PasetoKey()
			if err != nil {
				return err
			}
			maker, err := paseto.NewMaker(key)
			if err != nil {
				return err
			}
			token, err := maker.GenerateToken(models.Claims{
				Subject:   opts.Subject,
				Role:      opts.Role,
				CompanyID: opts.CompanyID,
			}, opts.TTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", "", "who the token is for (required)")
	cmd.Flags().StringVar(&opts.Role, "role", "", "role; \"admin\" may upload and read every company")
	cmd.Flags().StringVar(&opts.CompanyID, "company", "", "restrict the token to one company id")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", paseto.DefaultTokenTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
