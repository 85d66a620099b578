package cli

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/goliatone/go-gamerdb/query"
	"github.com/spf13/cobra"
)

func newPlatformCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Platform catalog commands",
	}

	cmd.AddCommand(newPlatformListCmd(a))
	cmd.AddCommand(newPlatformAddCmd(a))
	cmd.AddCommand(newPlatformDeleteCmd(a))

	return cmd
}

func newPlatformListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			platforms, err := svc.Queries().Platforms.Query(cmd.Context(), query.PlatformListInput{})
			if err != nil {
				return err
			}
			a.output().Print(platforms)
			return nil
		},
	}
}

func newPlatformAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <emoji-id>",
		Short: "Add a platform with its emoji",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			iconRef, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid emoji id %q: %w", args[1], err)
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			var platform types.Platform
			err = svc.Commands().PlatformAdd.Execute(cmd.Context(), command.PlatformAddInput{
				Name:    args[0],
				IconRef: iconRef,
				Channel: command.ChannelCLI,
				Result:  &platform,
			})
			if err != nil {
				return err
			}
			a.output().Print([]types.Platform{platform})
			return nil
		},
	}
}

func newPlatformDeleteCmd(a *app) *cobra.Command {
	var byID bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a platform and every registration on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := command.PlatformDeleteInput{
				Name:    args[0],
				Channel: command.ChannelCLI,
				Result:  &command.PlatformDeleteResult{},
			}
			if byID {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid platform id %q: %w", args[0], err)
				}
				input.Name, input.PlatformID = "", id
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Commands().PlatformDelete.Execute(cmd.Context(), input); err != nil {
				return err
			}
			if !input.Result.Deleted {
				a.output().PrintMessage("nothing deleted")
				return nil
			}
			a.output().PrintMessage(fmt.Sprintf("deleted %s", input.Result.Platform.Name))
			return nil
		},
	}

	cmd.Flags().BoolVar(&byID, "id", false, "Treat the argument as a platform id")

	return cmd
}
