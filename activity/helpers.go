package activity

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-gamerdb/pkg/types"
)

// RecordOption mutates the ActivityRecord produced by BuildRecord.
type RecordOption func(*types.ActivityRecord)

// WithChannel sets the channel the action came through (gateway, cli, import).
func WithChannel(channel string) RecordOption {
	return func(record *types.ActivityRecord) {
		record.Channel = strings.TrimSpace(channel)
	}
}

// WithGuild scopes the record to a guild.
func WithGuild(guildID int64) RecordOption {
	return func(record *types.ActivityRecord) {
		record.GuildID = guildID
	}
}

// WithOccurredAt stamps the record. Records without a timestamp are stamped
// by the sink.
func WithOccurredAt(at time.Time) RecordOption {
	return func(record *types.ActivityRecord) {
		record.OccurredAt = at
	}
}

// BuildRecord constructs an ActivityRecord for the actor and object. The
// metadata map is copied.
func BuildRecord(actorID int64, verb, objectType string, objectID int64, metadata map[string]any, opts ...RecordOption) types.ActivityRecord {
	record := types.ActivityRecord{
		ActorID:    actorID,
		Verb:       strings.TrimSpace(verb),
		ObjectType: strings.TrimSpace(objectType),
		Data:       cloneMetadata(metadata),
	}
	if objectID != 0 {
		record.ObjectID = strconv.FormatInt(objectID, 10)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&record)
		}
	}
	return record
}

func cloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
