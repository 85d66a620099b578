package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/goliatone/go-gamerdb/gateway/discord"
	"github.com/spf13/cobra"
)

// ErrAlreadyRunning is returned when another serve process holds the lock file.
var ErrAlreadyRunning = errors.New("cli: gateway already running")

func newServeCmd(a *app) *cobra.Command {
	var lockFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateGateway(); err != nil {
				return err
			}
			unlock, err := acquireLock(lockFile)
			if err != nil {
				return err
			}
			defer unlock()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			if err := svc.HealthCheck(ctx); err != nil {
				return err
			}
			a.logger.Info("cli: starting gateway", "config", a.cfg.Masked(), "lock_file", lockFile)

			bot, err := discord.New(discord.Config{
				Service:       svc,
				Token:         a.cfg.Discord.Token,
				ApplicationID: a.cfg.Discord.ApplicationID,
				DevGuildID:    a.cfg.Discord.DevGuildID,
				OwnerID:       a.cfg.Discord.OwnerID,
				Permissions:   a.cfg.Discord.Permissions,
				SweepInterval: a.cfg.Flow.SweepInterval,
				Logger:        a.logger,
			})
			if err != nil {
				return err
			}
			err = bot.Run(ctx)
			a.logger.Info("cli: gateway stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&lockFile, "lock-file", "gamerdb.lock", "Lock file that keeps a second gateway from starting (empty disables)")
	return cmd
}

// acquireLock takes a non-blocking file lock. An empty path disables it.
func acquireLock(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cli: lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s is held", ErrAlreadyRunning, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
