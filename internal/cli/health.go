package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the database and service wiring",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.HealthCheck(cmd.Context()); err != nil {
				return err
			}
			a.output().PrintMessage("ok")
			return nil
		},
	}
}
