package cli

import (
	"fmt"
	"strconv"

	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/query"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Member profile commands",
	}

	cmd.AddCommand(newProfileShowCmd(a))
	cmd.AddCommand(newProfileRegisterCmd(a))
	cmd.AddCommand(newProfileUnregisterCmd(a))
	cmd.AddCommand(newProfileUsersForCmd(a))

	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <member-id>",
		Short: "Show the platforms and gamertags of a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member", args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			items, err := svc.Queries().Profile.Query(cmd.Context(), query.ProfileQueryInput{MemberID: memberID})
			if err != nil {
				return err
			}
			a.output().Print(items)
			return nil
		},
	}
}

func newProfileRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <member-id> <gamertag> <platform...>",
		Short: "Register a gamertag for a member on platforms",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member", args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result := &command.ProfileChangeResult{}
			err = svc.Commands().ProfileRegister.Execute(cmd.Context(), command.ProfileRegisterInput{
				MemberID:  memberID,
				Gamertag:  args[1],
				Platforms: args[2:],
				Channel:   command.ChannelCLI,
				Result:    result,
			})
			if err != nil {
				return err
			}
			a.output().PrintMessage(changeSummary("registered", result))
			return nil
		},
	}
}

func newProfileUnregisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <member-id> <platform...>",
		Short: "Remove platforms from a member profile",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member", args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result := &command.ProfileChangeResult{}
			err = svc.Commands().ProfileUnregister.Execute(cmd.Context(), command.ProfileUnregisterInput{
				MemberID:  memberID,
				Platforms: args[1:],
				Channel:   command.ChannelCLI,
				Result:    result,
			})
			if err != nil {
				return err
			}
			a.output().PrintMessage(changeSummary("unregistered", result))
			return nil
		},
	}
}

func newProfileUsersForCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "usersfor <platform>",
		Aliases: []string{"users-for"},
		Short:   "List the members registered on a platform",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.Queries().UsersFor.Query(cmd.Context(), query.UsersForInput{Platform: args[0]})
			if err != nil {
				return err
			}
			a.output().Print(result)
			return nil
		},
	}
}

func changeSummary(verb string, result *command.ProfileChangeResult) string {
	names := make([]string, 0, len(result.Platforms))
	for _, platform := range result.Platforms {
		names = append(names, platform.Name)
	}
	summary := fmt.Sprintf("%s %d of %v", verb, result.Count, names)
	if len(result.Invalid) > 0 {
		summary += fmt.Sprintf(", ignored unknown %v", result.Invalid)
	}
	return summary
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
