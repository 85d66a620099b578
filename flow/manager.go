package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/google/uuid"
)

// DefaultTTL bounds how long a flow waits for its selection.
const DefaultTTL = 3 * time.Minute

// Config wires the flow manager.
type Config struct {
	Catalog  types.PlatformCatalog
	Profiles types.ProfileRepository
	TTL      time.Duration
	Clock    types.Clock
	IDGen    types.IDGenerator
	Logger   types.Logger
	// AfterCommit runs after a selection was written to storage. It is not
	// called for empty selections or failed commits.
	AfterCommit func(context.Context, Result)
}

// Manager tracks pending flows.
type Manager struct {
	catalog     types.PlatformCatalog
	profiles    types.ProfileRepository
	ttl         time.Duration
	clock       types.Clock
	idGen       types.IDGenerator
	logger      types.Logger
	afterCommit func(context.Context, Result)

	mu    sync.Mutex
	flows map[uuid.UUID]*Flow
}

// NewManager constructs a flow manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Catalog == nil {
		return nil, types.ErrMissingPlatformCatalog
	}
	if cfg.Profiles == nil {
		return nil, types.ErrMissingProfileRepository
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Manager{
		catalog:     cfg.Catalog,
		profiles:    cfg.Profiles,
		ttl:         ttl,
		clock:       clock,
		idGen:       idGen,
		logger:      logger,
		afterCommit: cfg.AfterCommit,
		flows:       make(map[uuid.UUID]*Flow),
	}, nil
}

// TTL returns the configured selection timeout.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start creates an independent flow for the request. Register flows offer
// the whole catalog; unregister flows offer only the platforms the member
// currently holds.
func (m *Manager) Start(ctx context.Context, req Request) (*Flow, error) {
	if req.MemberID == 0 {
		return nil, types.ErrMemberIDRequired
	}
	var options []types.Platform
	switch req.Kind {
	case KindRegister:
		if strings.TrimSpace(req.Gamertag) == "" {
			return nil, types.ErrGamertagRequired
		}
		options = m.catalog.All()
	case KindUnregister:
		items, err := m.profiles.ProfileFor(ctx, req.MemberID)
		if err != nil {
			return nil, err
		}
		options = make([]types.Platform, 0, len(items))
		for _, item := range items {
			options = append(options, item.Platform())
		}
	default:
		return nil, ErrUnknownKind
	}
	if len(options) == 0 {
		return nil, ErrNoOptions
	}

	f := newFlow(m.idGen.UUID(), req, options, m.clock.Now(), m.ttl)
	m.mu.Lock()
	m.flows[f.id] = f
	m.mu.Unlock()
	m.logger.Debug("flow: started", "flow_id", f.id.String(), "kind", req.Kind.String(), "member_id", req.MemberID, "options", len(options))
	return f, nil
}

// Get returns a pending flow.
func (m *Manager) Get(id uuid.UUID) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[id]
	return f, ok
}

// Pending reports the number of flows awaiting a selection.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// Receive handles the selection event. The flow is removed before any work
// is done so a second delivery gets ErrUnknownFlow. Storage errors fail the
// flow and are returned unchanged.
func (m *Manager) Receive(ctx context.Context, sel Selection) (Result, error) {
	f, err := m.claim(sel)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		FlowID:   f.id,
		Kind:     f.kind,
		MemberID: f.memberID,
		GuildID:  f.guildID,
		Gamertag: f.gamertag,
	}

	chosen, err := f.beginCommit(sel.PlatformIDs)
	if err != nil {
		return result, err
	}
	if len(chosen) == 0 {
		result.NoChange = true
		result.Platforms = chosen
		return result, nil
	}
	result.Platforms = chosen

	count, err := m.commit(ctx, f, chosen)
	f.finish(err)
	if err != nil {
		m.logger.Error("flow: commit failed", err, "flow_id", f.id.String(), "kind", f.kind.String())
		return result, err
	}
	result.Count = count
	if m.afterCommit != nil {
		m.afterCommit(ctx, result)
	}
	return result, nil
}

// Cancel drops a pending flow. It reports whether the flow was pending.
func (m *Manager) Cancel(id uuid.UUID) bool {
	m.mu.Lock()
	f, ok := m.flows[id]
	delete(m.flows, id)
	m.mu.Unlock()
	if ok {
		f.expire()
	}
	return ok
}

// Sweep expires and drops every flow whose deadline is at or before now. It
// returns the number of flows removed.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Flow
	for id, f := range m.flows {
		if f.expiredAt(now) {
			expired = append(expired, f)
			delete(m.flows, id)
		}
	}
	m.mu.Unlock()
	for _, f := range expired {
		f.expire()
	}
	if len(expired) > 0 {
		m.logger.Debug("flow: swept expired flows", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps expired flows on every tick until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.clock.Now())
		}
	}
}

func (m *Manager) claim(sel Selection) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[sel.FlowID]
	if !ok {
		return nil, ErrUnknownFlow
	}
	if sel.MemberID != f.memberID {
		return nil, ErrNotOwner
	}
	if f.expiredAt(m.clock.Now()) {
		delete(m.flows, sel.FlowID)
		f.expire()
		return nil, ErrExpired
	}
	// a flow that was never presented stays pending
	if state := f.State(); state != StateAwaitingSelection {
		return nil, fmt.Errorf("%w: select from %s", ErrInvalidTransition, state)
	}
	delete(m.flows, sel.FlowID)
	return f, nil
}

func (m *Manager) commit(ctx context.Context, f *Flow, chosen []types.Platform) (int, error) {
	switch f.kind {
	case KindRegister:
		entries := make([]types.ProfileEntry, 0, len(chosen))
		for _, platform := range chosen {
			entries = append(entries, types.ProfileEntry{
				Gamertag:   f.gamertag,
				PlatformID: platform.ID,
			})
		}
		return m.profiles.RegisterMany(ctx, f.memberID, entries)
	case KindUnregister:
		ids := make([]int64, 0, len(chosen))
		for _, platform := range chosen {
			ids = append(ids, platform.ID)
		}
		return m.profiles.UnregisterMany(ctx, f.memberID, ids)
	default:
		return 0, ErrUnknownKind
	}
}
