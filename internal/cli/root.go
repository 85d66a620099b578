package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Config loading and the database are
// deferred to the subcommands that need them.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{out: os.Stdout, errOut: os.Stderr})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gamerdb",
		Short: "Gamertag registry for Discord communities",
		Long: `gamerdb keeps a per-member registry of gamertags across game platforms.

It runs the Discord bot, applies database migrations, imports legacy data and
offers administrative commands for platforms, prefixes and profiles.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			a.errOut = cmd.ErrOrStderr()
			return a.loadConfig()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default gamerdb.yaml in . or ./config)")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Env file (default .env)")
	rootCmd.PersistentFlags().StringVarP(&a.format, "output", "o", "text", "Output format: text, json")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newPlatformCmd(a))
	rootCmd.AddCommand(newPrefixCmd(a))
	rootCmd.AddCommand(newProfileCmd(a))
	rootCmd.AddCommand(newActivityCmd(a))
	rootCmd.AddCommand(newHealthCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := ExecuteContext(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// ExecuteContext runs the root command with explicit arguments and writers.
func ExecuteContext(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{out: stdout, errOut: stderr}
	defer func() { _ = a.close() }()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}
