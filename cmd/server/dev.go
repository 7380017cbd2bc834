package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunalsingh7053/VyaparX/internal/platform/auth"
	"github.com/kunalsingh7053/VyaparX/internal/platform/config"
	platformspanner "github.com/kunalsingh7053/VyaparX/internal/platform/spanner"
	"github.com/kunalsingh7053/VyaparX/modules/payments/infrastructure/provider"
)

// Development helpers. Tokens are normally issued by the auth service and
// signatures by the payment provider.

func tokenCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		email  string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			r, ok := auth.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := auth.NewVerifier(cfg.JWTSecret, nil).Issue(userID, email, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "user, seller or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func signCallbackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-callback <razorpayOrderId> <razorpayPaymentId>",
		Short: "Compute the callback signature the configured provider would send",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), provider.Sign(cfg.ProviderSecret(), args[0], args[1]))
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the Spanner DDL",
		Long: `Print the Spanner DDL, one statement per line, e.g.

  vyaparx schema | xargs -d '\n' -I{} gcloud spanner databases ddl update commerce-db --instance=local-instance --ddl='{}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, stmt := range platformspanner.SchemaStatements() {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(strings.Fields(stmt), " "))
			}
			return nil
		},
	}
}
