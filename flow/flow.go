package flow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/google/uuid"
)

var (
	// ErrNoOptions indicates there is nothing to offer the member.
	ErrNoOptions = errors.New("flow: no platforms to offer")
	// ErrUnknownFlow indicates the flow id is not pending, either because it
	// never existed or because it already received its selection.
	ErrUnknownFlow = errors.New("flow: unknown or completed flow")
	// ErrNotOwner indicates a member answered a flow started by someone else.
	ErrNotOwner = errors.New("flow: selection from a different member")
	// ErrExpired indicates the flow outlived its TTL.
	ErrExpired = errors.New("flow: expired")
	// ErrInvalidTransition indicates an operation that the current state does
	// not allow.
	ErrInvalidTransition = errors.New("flow: invalid state transition")
	// ErrUnknownKind indicates a request with an unsupported kind.
	ErrUnknownKind = errors.New("flow: unknown kind")
)

// Kind selects what a flow commits.
type Kind int

const (
	KindRegister Kind = iota + 1
	KindUnregister
)

func (k Kind) String() string {
	switch k {
	case KindRegister:
		return "register"
	case KindUnregister:
		return "unregister"
	default:
		return "unknown"
	}
}

// State is a flow lifecycle state.
type State int

const (
	StateIdle State = iota
	StateAwaitingSelection
	StateCommitting
	StateDone
	StateFailed
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateExpired
}

// Request starts a flow.
type Request struct {
	Kind     Kind
	MemberID int64
	GuildID  int64
	Gamertag string
}

// Selection is the event delivered when the member submits the multi-select.
type Selection struct {
	FlowID      uuid.UUID
	MemberID    int64
	PlatformIDs []int64
}

// Result summarizes a finished flow.
type Result struct {
	FlowID    uuid.UUID
	Kind      Kind
	MemberID  int64
	GuildID   int64
	Gamertag  string
	Platforms []types.Platform
	Count     int
	NoChange  bool
}

// PlatformIDs returns the ids of the committed platforms.
func (r Result) PlatformIDs() []int64 {
	ids := make([]int64, 0, len(r.Platforms))
	for _, platform := range r.Platforms {
		ids = append(ids, platform.ID)
	}
	return ids
}

// Confirmation renders the chat reply for the result, without the member
// mention.
func (r Result) Confirmation() string {
	if r.NoChange || len(r.Platforms) == 0 {
		return "no platforms were selected, nothing changed"
	}
	names := make([]string, 0, len(r.Platforms))
	for _, platform := range r.Platforms {
		names = append(names, "**"+platform.DisplayName()+"**")
	}
	verb := "registered"
	if r.Kind == KindUnregister {
		verb = "unregistered"
	}
	return fmt.Sprintf("user info for %s has been %s!", strings.Join(names, ", "), verb)
}

// Flow is one pending conversation. All fields are guarded by mu.
type Flow struct {
	mu        sync.Mutex
	id        uuid.UUID
	kind      Kind
	memberID  int64
	guildID   int64
	gamertag  string
	state     State
	options   []types.Platform
	offered   map[int64]types.Platform
	createdAt time.Time
	expiresAt time.Time
	err       error
}

func newFlow(id uuid.UUID, req Request, options []types.Platform, now time.Time, ttl time.Duration) *Flow {
	ordered := make([]types.Platform, len(options))
	copy(ordered, options)
	sortPlatforms(ordered)
	offered := make(map[int64]types.Platform, len(ordered))
	for _, platform := range ordered {
		offered[platform.ID] = platform
	}
	return &Flow{
		id:        id,
		kind:      req.Kind,
		memberID:  req.MemberID,
		guildID:   req.GuildID,
		gamertag:  strings.TrimSpace(req.Gamertag),
		state:     StateIdle,
		options:   ordered,
		offered:   offered,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// ID returns the flow id used to route selections.
func (f *Flow) ID() uuid.UUID {
	return f.id
}

// Kind returns the flow kind.
func (f *Flow) Kind() Kind {
	return f.kind
}

// MemberID returns the member that owns the flow.
func (f *Flow) MemberID() int64 {
	return f.memberID
}

// GuildID returns the guild the flow was started in.
func (f *Flow) GuildID() int64 {
	return f.guildID
}

// Gamertag returns the gamertag a register flow will store.
func (f *Flow) Gamertag() string {
	return f.gamertag
}

// ExpiresAt returns the deadline for the selection.
func (f *Flow) ExpiresAt() time.Time {
	return f.expiresAt
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error that failed the flow, if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Options returns a copy of the offered platforms ordered by name.
func (f *Flow) Options() []types.Platform {
	out := make([]types.Platform, len(f.options))
	copy(out, f.options)
	return out
}

// Present moves the flow from Idle to AwaitingSelection and returns the
// options to render.
func (f *Flow) Present() ([]types.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle {
		return nil, fmt.Errorf("%w: present from %s", ErrInvalidTransition, f.state)
	}
	f.state = StateAwaitingSelection
	return f.Options(), nil
}

func (f *Flow) expiredAt(now time.Time) bool {
	return !now.Before(f.expiresAt)
}

// expire marks a non-terminal flow as Expired.
func (f *Flow) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.Terminal() {
		f.state = StateExpired
	}
}

// beginCommit validates the selection against the offered set and moves the
// flow into Committing. An empty selection finishes the flow as Done.
func (f *Flow) beginCommit(ids []int64) ([]types.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingSelection {
		return nil, fmt.Errorf("%w: select from %s", ErrInvalidTransition, f.state)
	}
	chosen := make([]types.Platform, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		platform, ok := f.offered[id]
		if !ok {
			err := types.PlatformNotFound(id)
			f.state = StateFailed
			f.err = err
			return nil, err
		}
		chosen = append(chosen, platform)
	}
	sortPlatforms(chosen)
	if len(chosen) == 0 {
		f.state = StateDone
		return chosen, nil
	}
	f.state = StateCommitting
	return chosen, nil
}

func (f *Flow) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.err = err
		return
	}
	f.state = StateDone
}

func sortPlatforms(platforms []types.Platform) {
	sort.SliceStable(platforms, func(i, j int) bool {
		return platforms[i].Name < platforms[j].Name
	})
}
