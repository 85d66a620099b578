package command

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-gamerdb/activity"
	"github.com/goliatone/go-gamerdb/pkg/types"
)

// Bulk import record kinds and statuses.
const (
	ImportKindPlatform = "platform"
	ImportKindPlayer   = "player"

	ImportStatusAdded    = "added"
	ImportStatusSkipped  = "skipped"
	ImportStatusImported = "imported"
	ImportStatusFailed   = "failed"
)

// ImportCommandConfig wires dependencies for the bulk importer.
type ImportCommandConfig struct {
	Catalog     types.PlatformCatalog
	Profiles    types.ProfileRepository
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Clock       types.Clock
	Logger      types.Logger
	FeatureGate featuregate.FeatureGate
}

// BulkImportInput seeds platforms and player edges, typically read from a
// legacy database or a seed file. Platforms are applied before players so
// players may reference platforms seeded in the same call.
type BulkImportInput struct {
	Platforms       []types.PlatformSeed
	Players         []types.PlayerSeed
	GuildID         int64
	ActorID         int64
	ContinueOnError bool
	DryRun          bool
	Results         *[]BulkImportResult
}

// Type implements gocommand.Message.
func (BulkImportInput) Type() string {
	return "command.import.bulk"
}

// Validate implements gocommand.Message.
func (input BulkImportInput) Validate() error {
	if len(input.Platforms) == 0 && len(input.Players) == 0 {
		return ErrSeedsRequired
	}
	return nil
}

// BulkImportResult captures the outcome for a single seed. Index is the
// position within its own seed slice.
type BulkImportResult struct {
	Index    int
	Kind     string
	Name     string
	MemberID int64
	Status   string
	Err      error
}

// BulkImportCommand imports platform and player seeds.
type BulkImportCommand struct {
	catalog  types.PlatformCatalog
	profiles types.ProfileRepository
	sink     types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	logger   types.Logger
	gate     featuregate.FeatureGate
}

// NewBulkImportCommand constructs the bulk import handler.
func NewBulkImportCommand(cfg ImportCommandConfig) *BulkImportCommand {
	return &BulkImportCommand{
		catalog:  cfg.Catalog,
		profiles: cfg.Profiles,
		sink:     cfg.Activity,
		hooks:    cfg.Hooks,
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
		gate:     cfg.FeatureGate,
	}
}

var _ gocommand.Commander[BulkImportInput] = (*BulkImportCommand)(nil)

// Execute applies the seeds, recording per-record results. Players are
// written in one batch per member, so a failing member does not affect
// others. Existing platforms are skipped, which makes re-running an import
// safe.
func (c *BulkImportCommand) Execute(ctx context.Context, input BulkImportInput) error {
	if c == nil || c.catalog == nil || c.profiles == nil {
		return goerrors.New("gamerdb: bulk import requires catalog and profile repository", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal)
	}
	if err := input.Validate(); err != nil {
		return err
	}
	enabled, err := featureEnabled(ctx, c.gate, FeatureProfilesImport, input.GuildID, input.ActorID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrImportDisabled
	}

	run := &importRun{
		results: make([]BulkImportResult, 0, len(input.Platforms)+len(input.Players)),
		pending: make(map[string]types.Platform),
	}
	stopped := c.importPlatforms(ctx, input, run)
	if !stopped {
		c.importPlayers(ctx, input, run)
	}

	if input.Results != nil {
		*input.Results = append((*input.Results)[:0], run.results...)
	}
	if !input.DryRun {
		c.recordCompletion(ctx, input, run)
	}
	if len(run.errs) > 0 {
		return errors.Join(run.errs...)
	}
	return nil
}

type importRun struct {
	results []BulkImportResult
	errs    []error
	// pending holds platforms a dry run would have added.
	pending map[string]types.Platform
}

func (r *importRun) fail(result BulkImportResult, err error) {
	result.Status = ImportStatusFailed
	result.Err = err
	r.results = append(r.results, result)
	r.errs = append(r.errs, err)
}

func (r *importRun) count(kind, status string) int {
	total := 0
	for _, result := range r.results {
		if result.Kind == kind && result.Status == status {
			total++
		}
	}
	return total
}

func (c *BulkImportCommand) importPlatforms(ctx context.Context, input BulkImportInput, run *importRun) bool {
	for idx, seed := range input.Platforms {
		name := types.NormalizeName(seed.Name)
		result := BulkImportResult{Index: idx, Kind: ImportKindPlatform, Name: name}
		if name == "" || seed.IconRef == 0 {
			cause := types.ErrPlatformNameRequired
			if name != "" {
				cause = types.ErrIconRefRequired
			}
			run.fail(result, bulkImportError(cause, bulkImportMetadata(idx, ImportKindPlatform, name, 0)))
			if !input.ContinueOnError {
				return true
			}
			continue
		}
		if _, ok := c.catalog.Lookup(name); ok {
			result.Status = ImportStatusSkipped
			run.results = append(run.results, result)
			continue
		}
		if _, ok := run.pending[name]; ok {
			result.Status = ImportStatusSkipped
			run.results = append(run.results, result)
			continue
		}
		if input.DryRun {
			run.pending[name] = types.Platform{Name: name, IconRef: seed.IconRef}
			result.Status = ImportStatusAdded
			run.results = append(run.results, result)
			continue
		}
		if _, err := c.catalog.Add(ctx, name, seed.IconRef); err != nil {
			if errors.Is(err, types.ErrDuplicatePlatformName) {
				result.Status = ImportStatusSkipped
				run.results = append(run.results, result)
				continue
			}
			run.fail(result, bulkImportError(err, bulkImportMetadata(idx, ImportKindPlatform, name, 0)))
			if !input.ContinueOnError {
				return true
			}
			continue
		}
		result.Status = ImportStatusAdded
		run.results = append(run.results, result)
	}
	return false
}

type memberBatch struct {
	memberID int64
	indexes  []int
	entries  []types.ProfileEntry
	names    []string
}

func (c *BulkImportCommand) importPlayers(ctx context.Context, input BulkImportInput, run *importRun) {
	batches := make([]*memberBatch, 0)
	byMember := make(map[int64]*memberBatch)
	for idx, seed := range input.Players {
		name := types.NormalizeName(seed.PlatformName)
		result := BulkImportResult{Index: idx, Kind: ImportKindPlayer, Name: name, MemberID: seed.MemberID}
		var cause error
		platform, ok := c.catalog.Lookup(name)
		if !ok {
			platform, ok = run.pending[name]
		}
		switch {
		case seed.MemberID == 0:
			cause = types.ErrMemberIDRequired
		case strings.TrimSpace(seed.Gamertag) == "":
			cause = types.ErrGamertagRequired
		case !ok:
			cause = types.PlatformNotFound(name)
		}
		if cause != nil {
			run.fail(result, bulkImportError(cause, bulkImportMetadata(idx, ImportKindPlayer, name, seed.MemberID)))
			if !input.ContinueOnError {
				return
			}
			continue
		}
		batch, exists := byMember[seed.MemberID]
		if !exists {
			batch = &memberBatch{memberID: seed.MemberID}
			byMember[seed.MemberID] = batch
			batches = append(batches, batch)
		}
		batch.indexes = append(batch.indexes, idx)
		batch.entries = append(batch.entries, types.ProfileEntry{Gamertag: strings.TrimSpace(seed.Gamertag), PlatformID: platform.ID})
		batch.names = append(batch.names, name)
	}

	for _, batch := range batches {
		var err error
		if !input.DryRun {
			if _, writeErr := c.profiles.RegisterMany(ctx, batch.memberID, batch.entries); writeErr != nil {
				// one error per member batch; every seed in it shares the outcome
				err = bulkImportError(writeErr, bulkImportMetadata(batch.indexes[0], ImportKindPlayer, "", batch.memberID))
				run.errs = append(run.errs, err)
			}
		}
		for i, idx := range batch.indexes {
			result := BulkImportResult{Index: idx, Kind: ImportKindPlayer, Name: batch.names[i], MemberID: batch.memberID}
			if err != nil {
				result.Status = ImportStatusFailed
				result.Err = err
			} else {
				result.Status = ImportStatusImported
			}
			run.results = append(run.results, result)
		}
		if err != nil && !input.ContinueOnError {
			return
		}
	}
}

func (c *BulkImportCommand) recordCompletion(ctx context.Context, input BulkImportInput, run *importRun) {
	record := activity.BuildRecord(input.ActorID, types.VerbImportCompleted, "import", 0, map[string]any{
		"platforms_added":   run.count(ImportKindPlatform, ImportStatusAdded),
		"platforms_skipped": run.count(ImportKindPlatform, ImportStatusSkipped),
		"players_imported":  run.count(ImportKindPlayer, ImportStatusImported),
		"failed":            len(run.errs),
	}, activity.WithGuild(input.GuildID), activity.WithChannel(ChannelImport), activity.WithOccurredAt(now(c.clock)))
	recordActivity(ctx, c.sink, c.hooks, c.logger, record)
	c.logger.Info("command: import finished",
		"platforms_added", record.Data["platforms_added"],
		"players_imported", record.Data["players_imported"],
		"failed", len(run.errs))
}

func bulkImportMetadata(index int, kind, name string, memberID int64) map[string]any {
	metadata := map[string]any{
		"index": index,
		"kind":  kind,
	}
	if name != "" {
		metadata["platform"] = name
	}
	if memberID != 0 {
		metadata["member_id"] = memberID
	}
	return metadata
}

func bulkImportError(err error, metadata map[string]any) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.WithMetadata(metadata)
	}

	category := goerrors.CategoryInternal
	code := goerrors.CodeInternal
	switch {
	case errors.Is(err, types.ErrPlatformNameRequired),
		errors.Is(err, types.ErrIconRefRequired),
		errors.Is(err, types.ErrMemberIDRequired),
		errors.Is(err, types.ErrGamertagRequired):
		category = goerrors.CategoryValidation
		code = goerrors.CodeBadRequest
	}

	return goerrors.Wrap(err, category, "gamerdb: bulk import failed").
		WithCode(code).
		WithMetadata(metadata)
}
