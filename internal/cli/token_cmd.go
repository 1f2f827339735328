package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/triage-service/internal/domain"
)

func newTokenCmd(app *App) *cobra.Command {
	var staffID string
	var role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff bearer token for the inbox API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(staffID) == "" {
				return errors.New("--staff-id is required")
			}
			token, meta, err := app.Tokens.GenerateToken(staffID, domain.StaffRole(strings.ToUpper(role)))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", meta.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}

	cmd.Flags().StringVar(&staffID, "staff-id", "", "Staff identifier placed in the token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.StaffRoleAgent), "AGENT or ADMIN")

	return cmd
}
