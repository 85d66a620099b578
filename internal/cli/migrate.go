package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.database(cmd.Context()); err != nil {
				return err
			}
			a.output().PrintMessage("migrations applied")
			return nil
		},
	}
}
