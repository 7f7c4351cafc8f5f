package manage

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/athujoshi24/legendary-panel/internal/services"
)

func newCreateUserCmd(open Opener, super bool) *cobra.Command {
	var (
		email, password, name string
		staff                 bool
	)

	use, short := "createuser", "Create a user account"
	if super {
		use, short = "createsuperuser", "Create a staff account with superuser rights"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Without --password the account is created with an unusable password and
cannot log in until one is set.

Examples:
  manage ` + use + ` --email cook@example.com --password 's3cret-pass'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				fields := services.UserFields{Name: name, IsStaff: staff}
				create := env.Auth.CreateUser
				if super {
					create = env.Auth.CreateSuperuser
				}
				u, err := create(ctx, email, password, fields)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", u.ID, u.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	if !super {
		cmd.Flags().BoolVar(&staff, "staff", false, "mark the account as staff")
	}
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newDeleteUserCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteuser EMAIL",
		Short: "Delete a user and every tag, ingredient and recipe it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				u, err := env.Auth.GetUserByEmail(ctx, args[0])
				if err != nil {
					return err
				}
				if err := env.Auth.DeleteUser(ctx, u.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted user %d (%s)\n", u.ID, u.Email)
				return nil
			})
		},
	}
}
