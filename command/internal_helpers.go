package command

import (
	"context"
	"time"

	"github.com/goliatone/go-gamerdb/pkg/types"
)

// Channels recorded on activity entries.
const (
	ChannelGateway = "gateway"
	ChannelCLI     = "cli"
	ChannelImport  = "import"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

// recordActivity writes to the sink and fires the activity hook. Sink
// failures are logged; the mutation already succeeded.
func recordActivity(ctx context.Context, sink types.ActivitySink, hooks types.Hooks, logger types.Logger, record types.ActivityRecord) {
	if sink != nil {
		if err := sink.Log(ctx, record); err != nil {
			safeLogger(logger).Error("command: activity log failed", err, "verb", record.Verb)
		}
	}
	if hooks.AfterActivity != nil {
		hooks.AfterActivity(ctx, record)
	}
}

func emitPlatformHook(ctx context.Context, hooks types.Hooks, event types.PlatformEvent) {
	if hooks.AfterPlatformChange == nil {
		return
	}
	hooks.AfterPlatformChange(ctx, event)
}

func emitProfileHook(ctx context.Context, hooks types.Hooks, event types.ProfileEvent) {
	if hooks.AfterProfileChange == nil {
		return
	}
	hooks.AfterProfileChange(ctx, event)
}

func emitPrefixHook(ctx context.Context, hooks types.Hooks, event types.PrefixEvent) {
	if hooks.AfterPrefixChange == nil {
		return
	}
	hooks.AfterPrefixChange(ctx, event)
}

func platformNames(platforms []types.Platform) []string {
	names := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		names = append(names, platform.Name)
	}
	return names
}

func platformIDs(platforms []types.Platform) []int64 {
	ids := make([]int64, 0, len(platforms))
	for _, platform := range platforms {
		ids = append(ids, platform.ID)
	}
	return ids
}
