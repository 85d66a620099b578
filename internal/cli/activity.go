package cli

import (
	"time"

	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/spf13/cobra"
)

func newActivityCmd(a *app) *cobra.Command {
	var (
		guildID int64
		actorID int64
		verbs   []string
		since   time.Duration
		limit   int
		offset  int
		stats   bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			var sinceAt *time.Time
			if since > 0 {
				at := time.Now().UTC().Add(-since)
				sinceAt = &at
			}
			if stats {
				result, err := svc.Queries().ActivityStats.Query(cmd.Context(), types.ActivityStatsFilter{
					GuildID: guildID,
					Since:   sinceAt,
				})
				if err != nil {
					return err
				}
				a.output().Print(result)
				return nil
			}
			page, err := svc.Queries().ActivityFeed.Query(cmd.Context(), types.ActivityFilter{
				GuildID:    guildID,
				ActorID:    actorID,
				Verbs:      verbs,
				Since:      sinceAt,
				Pagination: types.Pagination{Limit: limit, Offset: offset},
			})
			if err != nil {
				return err
			}
			a.output().Print(page)
			return nil
		},
	}

	cmd.Flags().Int64Var(&guildID, "guild", 0, "Only records for this guild")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "Only records by this member")
	cmd.Flags().StringSliceVar(&verbs, "verb", nil, "Only these verbs, e.g. profile.registered")
	cmd.Flags().DurationVar(&since, "since", 0, "Only records newer than this, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print counts per verb instead of records")

	return cmd
}
