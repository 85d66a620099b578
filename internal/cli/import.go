package cli

import (
	"fmt"

	"github.com/goliatone/go-gamerdb/command"
	"github.com/goliatone/go-gamerdb/legacy"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		legacyDB        string
		platformsFile   string
		guildID         int64
		dryRun          bool
		continueOnError bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import platforms and players from the legacy bot",
		Long: `Import reads a platforms file (JSON, TOML or YAML) and the legacy
single-table sqlite store, then loads both through the bulk import command.
Platforms that already exist are skipped, so the import can be re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if legacyDB == "" && platformsFile == "" {
				return fmt.Errorf("--legacy-db or --platforms is required")
			}

			var input command.BulkImportInput
			if platformsFile != "" {
				seeds, err := legacy.LoadPlatformSeeds(platformsFile)
				if err != nil {
					return err
				}
				input.Platforms = seeds
			}
			if legacyDB != "" {
				players, err := readLegacyPlayers(cmd, a, legacyDB)
				if err != nil {
					return err
				}
				input.Players = players
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			var results []command.BulkImportResult
			input.GuildID = guildID
			input.DryRun = dryRun
			input.ContinueOnError = continueOnError
			input.Results = &results

			err = svc.Commands().BulkImport.Execute(cmd.Context(), input)
			a.output().Print(results)
			return err
		},
	}

	cmd.Flags().StringVar(&legacyDB, "legacy-db", "", "Path to the legacy sqlite file")
	cmd.Flags().StringVar(&platformsFile, "platforms", "", "Path to the platforms file")
	cmd.Flags().Int64Var(&guildID, "guild", 0, "Guild recorded on the activity log and used for feature checks")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without writing")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "Keep going after a failed record")

	return cmd
}

func readLegacyPlayers(cmd *cobra.Command, a *app, path string) ([]types.PlayerSeed, error) {
	db, err := legacy.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	snapshot, err := legacy.Read(cmd.Context(), db)
	if err != nil {
		return nil, err
	}
	a.logger.Info("cli: legacy store read",
		"platforms", len(snapshot.Platforms),
		"players", len(snapshot.Players),
		"skipped_rows", snapshot.Skipped)
	return snapshot.Players, nil
}
