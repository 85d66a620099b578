package types

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DefaultPrefix is the command prefix used when a guild has no override.
const DefaultPrefix = "gdb/"

// Platform is a supported game platform. Names are stored lower-case.
type Platform struct {
	ID      int64
	Name    string
	IconRef int64
}

// DisplayName returns the title-cased platform name.
func (p Platform) DisplayName() string {
	return TitleCase(p.Name)
}

// ProfileEntry is a single (gamertag, platform) pair to register for a member.
type ProfileEntry struct {
	Gamertag   string
	PlatformID int64
}

// ProfileItem is a row of a member profile joined against the platforms table.
type ProfileItem struct {
	PlatformID   int64
	PlatformName string
	IconRef      int64
	Gamertag     string
}

// Platform returns the platform portion of the profile row.
func (p ProfileItem) Platform() Platform {
	return Platform{ID: p.PlatformID, Name: p.PlatformName, IconRef: p.IconRef}
}

// Membership is a member registered under a platform.
type Membership struct {
	MemberID int64
	Gamertag string
}

// GuildSetting stores the per-guild prefix override.
type GuildSetting struct {
	GuildID   int64
	Prefix    string
	UpdatedAt time.Time
}

// PlatformSeed describes a platform row supplied by bulk importers.
type PlatformSeed struct {
	Name    string
	IconRef int64
}

// PlayerSeed describes a profile edge supplied by bulk importers. The platform
// is referenced by name and resolved against the catalog.
type PlayerSeed struct {
	MemberID     int64
	Gamertag     string
	PlatformName string
}

// NormalizeName trims and lower-cases a platform name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(value string) string {
	runes := []rune(strings.ToLower(value))
	start := true
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start {
				runes[i] = unicode.ToUpper(r)
			}
			start = false
			continue
		}
		start = true
	}
	return string(runes)
}

// PlatformEvent is emitted after a platform is added or deleted.
type PlatformEvent struct {
	Platform   Platform
	Action     string
	GuildID    int64
	ActorID    int64
	OccurredAt time.Time
}

// ProfileEvent is emitted after profile edges are registered or removed.
type ProfileEvent struct {
	MemberID    int64
	GuildID     int64
	Action      string
	PlatformIDs []int64
	Count       int
	OccurredAt  time.Time
}

// PrefixEvent is emitted after a guild prefix changes.
type PrefixEvent struct {
	GuildID    int64
	Prefix     string
	ActorID    int64
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterPlatformChange func(context.Context, PlatformEvent)
	AfterProfileChange  func(context.Context, ProfileEvent)
	AfterPrefixChange   func(context.Context, PrefixEvent)
	AfterActivity       func(context.Context, ActivityRecord)
}

// ActivityRecord describes sink inputs and is shared across sink and query layers.
type ActivityRecord struct {
	ID         uuid.UUID
	GuildID    int64
	ActorID    int64
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	Data       map[string]any
	OccurredAt time.Time
}

// Activity verbs recorded by the mutation commands.
const (
	VerbPlatformAdded       = "platform.added"
	VerbPlatformDeleted     = "platform.deleted"
	VerbProfileRegistered   = "profile.registered"
	VerbProfileUnregistered = "profile.unregistered"
	VerbPrefixUpdated       = "prefix.updated"
	VerbImportCompleted     = "import.completed"
)

// ActivitySink is the minimal contract for emitting activity.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// Pagination bounds list queries.
type Pagination struct {
	Limit  int
	Offset int
}

// ActivityFilter narrows activity feed queries.
type ActivityFilter struct {
	GuildID    int64
	ActorID    int64
	Verbs      []string
	Since      *time.Time
	Pagination Pagination
}

// Type implements gocommand.Message for query inputs.
func (ActivityFilter) Type() string {
	return "query.activity.feed"
}

// Validate implements gocommand.Message.
func (filter ActivityFilter) Validate() error {
	if filter.Pagination.Limit < 0 || filter.Pagination.Offset < 0 {
		return ErrInvalidPagination
	}
	return nil
}

// ActivityPage is a page of activity records.
type ActivityPage struct {
	Records    []ActivityRecord
	Total      int
	NextOffset int
	HasMore    bool
}

// ActivityStatsFilter narrows activity aggregation.
type ActivityStatsFilter struct {
	GuildID int64
	Since   *time.Time
}

// Type implements gocommand.Message for query inputs.
func (ActivityStatsFilter) Type() string {
	return "query.activity.stats"
}

// Validate implements gocommand.Message.
func (ActivityStatsFilter) Validate() error {
	return nil
}

// ActivityStats aggregates activity counts by verb.
type ActivityStats struct {
	Total  int
	ByVerb map[string]int
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger is the minimal structured logger used across packages. Fields are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}
