package cli

import (
	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/query"
	"github.com/spf13/cobra"
)

func newPrefixCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefix",
		Short: "Guild prefix commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <guild-id>",
		Short: "Show the effective prefix of a guild",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseID("guild", args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			prefix, err := svc.Queries().Prefix.Query(cmd.Context(), query.PrefixQueryInput{GuildID: guildID})
			if err != nil {
				return err
			}
			a.output().PrintMessage(prefix)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <guild-id> <prefix>",
		Short: "Override the prefix of a guild",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseID("guild", args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			err = svc.Commands().PrefixSet.Execute(cmd.Context(), command.PrefixSetInput{
				GuildID: guildID,
				Prefix:  args[1],
				Channel: command.ChannelCLI,
			})
			if err != nil {
				return err
			}
			a.output().PrintMessage(svc.Prefixes().GetPrefix(cmd.Context(), guildID))
			return nil
		},
	})

	return cmd
}
