package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/bidportal-archiver/internal/models"
)

// MigrateCmd applies pending database migrations.
func MigrateCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := deps.Migrate()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			state := color.New(color.FgBlue).Sprint("UP TO DATE")
			if res.Changed {
				state = color.New(color.FgGreen).Sprint("MIGRATED")
			}
			if res.Dirty {
				state = color.New(color.FgRed).Sprint("DIRTY")
			}
			fmt.Fprintf(out, "%s schema version %d\n", state, res.Version)
			if res.Dirty {
				return fmt.Errorf("schema version %d is dirty; fix it manually before retrying", res.Version)
			}
			return nil
		},
	}
}

// TokenCmd issues an access token for calling the API as an operator.
func TokenCmd(deps Deps) *cobra.Command {
	var (
		user  string
		role  string
		email string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.UserRole(strings.ToUpper(strings.TrimSpace(role)))
			switch r {
			case models.RoleAdmin, models.RoleOwner, models.RoleCoordinator, models.RoleSubcontractor:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			token, expiresAt, err := deps.Tokens.IssueToken(user, r, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id placed in the token")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "ADMIN, OWNER, COORDINATOR or SUBCONTRACTOR")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")

	return cmd
}
