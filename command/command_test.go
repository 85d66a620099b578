package command

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-gamerdb/flow"
	"github.com/goliatone/go-gamerdb/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPlatformAddCommand_RecordsActivityBeforeHook(t *testing.T) {
	catalog := newFakeCatalog()
	order := make([]string, 0, 3)
	sink := &recordingActivitySink{
		onLog: func(types.ActivityRecord) {
			order = append(order, "sink")
		},
	}
	var event types.PlatformEvent
	hooks := types.Hooks{
		AfterActivity: func(context.Context, types.ActivityRecord) {
			order = append(order, "activity_hook")
		},
		AfterPlatformChange: func(_ context.Context, e types.PlatformEvent) {
			order = append(order, "platform_hook")
			event = e
		},
	}
	cmd := NewPlatformAddCommand(PlatformCommandConfig{
		Catalog:  catalog,
		Activity: sink,
		Hooks:    hooks,
		Clock:    fixedClock{},
	})

	var created types.Platform
	err := cmd.Execute(context.Background(), PlatformAddInput{
		Name:    "  Steam ",
		IconRef: 77,
		GuildID: 9,
		ActorID: 5,
		Channel: ChannelGateway,
		Result:  &created,
	})
	require.NoError(t, err)
	require.Equal(t, "steam", created.Name)
	require.NotZero(t, created.ID)

	_, ok := catalog.Lookup("STEAM")
	require.True(t, ok)

	require.Equal(t, []string{"sink", "activity_hook", "platform_hook"}, order)
	record := sink.last()
	require.Equal(t, types.VerbPlatformAdded, record.Verb)
	require.Equal(t, int64(9), record.GuildID)
	require.Equal(t, "gateway", record.Channel)
	require.Equal(t, "steam", record.Data["name"])
	require.Equal(t, fixedNow, record.OccurredAt)
	require.Equal(t, created, event.Platform)
	require.Equal(t, int64(5), event.ActorID)
}

func TestPlatformAddCommand_Validation(t *testing.T) {
	cmd := NewPlatformAddCommand(PlatformCommandConfig{Catalog: newFakeCatalog()})

	err := cmd.Execute(context.Background(), PlatformAddInput{IconRef: 1})
	require.ErrorIs(t, err, types.ErrPlatformNameRequired)

	err = cmd.Execute(context.Background(), PlatformAddInput{Name: "steam"})
	require.ErrorIs(t, err, types.ErrIconRefRequired)

	err = NewPlatformAddCommand(PlatformCommandConfig{}).Execute(context.Background(), PlatformAddInput{Name: "steam", IconRef: 1})
	require.ErrorIs(t, err, types.ErrMissingPlatformCatalog)
}

func TestPlatformAddCommand_DuplicateSkipsActivity(t *testing.T) {
	catalog := newFakeCatalog(types.Platform{ID: 1, Name: "steam", IconRef: 10})
	sink := &recordingActivitySink{}
	cmd := NewPlatformAddCommand(PlatformCommandConfig{Catalog: catalog, Activity: sink})

	err := cmd.Execute(context.Background(), PlatformAddInput{Name: "Steam", IconRef: 11})
	require.ErrorIs(t, err, types.ErrDuplicatePlatformName)
	require.True(t, types.IsDuplicate(err))
	require.Empty(t, sink.records)
}

func TestPlatformAddCommand_FeatureGateDisabled(t *testing.T) {
	catalog := newFakeCatalog()
	gate := &stubFeatureGate{enabled: false}
	cmd := NewPlatformAddCommand(PlatformCommandConfig{Catalog: catalog, FeatureGate: gate})

	err := cmd.Execute(context.Background(), PlatformAddInput{Name: "steam", IconRef: 1, GuildID: 3, ActorID: 4})
	require.ErrorIs(t, err, ErrPlatformManagementDisabled)
	require.Empty(t, catalog.All())
	require.Equal(t, []string{FeaturePlatformsManage}, gate.keys)
}

func TestPlatformAddCommand_FeatureGateError(t *testing.T) {
	gateErr := errors.New("gate down")
	cmd := NewPlatformAddCommand(PlatformCommandConfig{
		Catalog:     newFakeCatalog(),
		FeatureGate: &stubFeatureGate{err: gateErr},
	})
	err := cmd.Execute(context.Background(), PlatformAddInput{Name: "steam", IconRef: 1})
	require.ErrorIs(t, err, gateErr)
}

func TestFeatureScopeSet(t *testing.T) {
	require.Nil(t, featureScopeSet(0, 0))

	set := featureScopeSet(12, 34)
	require.NotNil(t, set)
	require.True(t, set.System)
	require.Equal(t, "12", set.TenantID)
	require.Equal(t, "34", set.UserID)
}

func TestPlatformDeleteCommand_ByName(t *testing.T) {
	catalog := newFakeCatalog(types.Platform{ID: 1, Name: "steam", IconRef: 10})
	sink := &recordingActivitySink{}
	var event types.PlatformEvent
	cmd := NewPlatformDeleteCommand(PlatformCommandConfig{
		Catalog:  catalog,
		Activity: sink,
		Hooks: types.Hooks{
			AfterPlatformChange: func(_ context.Context, e types.PlatformEvent) { event = e },
		},
	})

	var result PlatformDeleteResult
	err := cmd.Execute(context.Background(), PlatformDeleteInput{Name: "STEAM", Result: &result})
	require.NoError(t, err)
	require.True(t, result.Deleted)
	require.Equal(t, "steam", result.Platform.Name)
	require.Equal(t, []int64{1}, catalog.deleted)
	require.Equal(t, types.VerbPlatformDeleted, sink.last().Verb)
	require.Equal(t, "1", sink.last().ObjectID)
	require.Equal(t, types.VerbPlatformDeleted, event.Action)
}

func TestPlatformDeleteCommand_UnknownName(t *testing.T) {
	catalog := newFakeCatalog()
	cmd := NewPlatformDeleteCommand(PlatformCommandConfig{Catalog: catalog})

	err := cmd.Execute(context.Background(), PlatformDeleteInput{Name: "dreamcast"})
	require.True(t, types.IsNotFound(err))
	require.Empty(t, catalog.deleted)
}

func TestPlatformDeleteCommand_UnknownIDIsNoOp(t *testing.T) {
	catalog := newFakeCatalog()
	sink := &recordingActivitySink{}
	cmd := NewPlatformDeleteCommand(PlatformCommandConfig{Catalog: catalog, Activity: sink})

	var result PlatformDeleteResult
	err := cmd.Execute(context.Background(), PlatformDeleteInput{PlatformID: 42, Result: &result})
	require.NoError(t, err)
	require.False(t, result.Deleted)
	require.Empty(t, sink.records)
}

func TestPlatformDeleteCommand_RequiresReference(t *testing.T) {
	cmd := NewPlatformDeleteCommand(PlatformCommandConfig{Catalog: newFakeCatalog()})
	err := cmd.Execute(context.Background(), PlatformDeleteInput{Name: "   "})
	require.ErrorIs(t, err, ErrPlatformRefRequired)
}

func TestPrefixSetCommand_PersistsAndEmits(t *testing.T) {
	store := &fakePrefixStore{}
	sink := &recordingActivitySink{}
	var event types.PrefixEvent
	cmd := NewPrefixSetCommand(PrefixCommandConfig{
		Store:    store,
		Activity: sink,
		Hooks: types.Hooks{
			AfterPrefixChange: func(_ context.Context, e types.PrefixEvent) { event = e },
		},
	})

	var saved types.GuildSetting
	err := cmd.Execute(context.Background(), PrefixSetInput{GuildID: 7, Prefix: " !", ActorID: 2, Result: &saved})
	require.NoError(t, err)
	require.Equal(t, int64(7), saved.GuildID)
	require.Equal(t, "!", event.Prefix)
	require.Equal(t, types.VerbPrefixUpdated, sink.last().Verb)
	require.Equal(t, "!", sink.last().Data["prefix"])
}

func TestPrefixSetCommand_Validation(t *testing.T) {
	cmd := NewPrefixSetCommand(PrefixCommandConfig{Store: &fakePrefixStore{}})

	require.ErrorIs(t, cmd.Execute(context.Background(), PrefixSetInput{Prefix: "!"}), types.ErrGuildIDRequired)
	require.ErrorIs(t, cmd.Execute(context.Background(), PrefixSetInput{GuildID: 1, Prefix: "  "}), types.ErrPrefixRequired)
	require.ErrorIs(t, NewPrefixSetCommand(PrefixCommandConfig{}).Execute(context.Background(), PrefixSetInput{GuildID: 1, Prefix: "!"}), types.ErrMissingGuildSettings)
}

func TestPrefixSetCommand_StoreFailureSkipsActivity(t *testing.T) {
	storeErr := types.StorageUnavailable(errors.New("disk full"))
	sink := &recordingActivitySink{}
	cmd := NewPrefixSetCommand(PrefixCommandConfig{Store: &fakePrefixStore{err: storeErr}, Activity: sink})

	err := cmd.Execute(context.Background(), PrefixSetInput{GuildID: 1, Prefix: "!"})
	require.True(t, types.IsStorageUnavailable(err))
	require.Empty(t, sink.records)
}

func TestProfileRegisterCommand_ResolvesNamesAndReportsInvalid(t *testing.T) {
	catalog := newFakeCatalog(
		types.Platform{ID: 1, Name: "steam", IconRef: 10},
		types.Platform{ID: 2, Name: "origin", IconRef: 20},
	)
	profiles := newFakeProfiles()
	sink := &recordingActivitySink{}
	var event types.ProfileEvent
	cmd := NewProfileRegisterCommand(ProfileCommandConfig{
		Catalog:  catalog,
		Profiles: profiles,
		Activity: sink,
		Hooks: types.Hooks{
			AfterProfileChange: func(_ context.Context, e types.ProfileEvent) { event = e },
		},
	})

	var result ProfileChangeResult
	err := cmd.Execute(context.Background(), ProfileRegisterInput{
		MemberID:  11,
		GuildID:   3,
		Gamertag:  " Ninja ",
		Platforms: []string{"Steam", "steam", "gamecube", "ORIGIN"},
		Result:    &result,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	require.Equal(t, []string{"gamecube"}, result.Invalid)
	require.Len(t, profiles.registered, 1)
	require.Equal(t, []types.ProfileEntry{
		{Gamertag: "Ninja", PlatformID: 1},
		{Gamertag: "Ninja", PlatformID: 2},
	}, profiles.registered[0].entries)

	record := sink.last()
	require.Equal(t, types.VerbProfileRegistered, record.Verb)
	require.Equal(t, "member", record.ObjectType)
	require.Equal(t, "11", record.ObjectID)
	require.Equal(t, []string{"steam", "origin"}, record.Data["platforms"])
	require.Equal(t, []int64{1, 2}, event.PlatformIDs)
}

func TestProfileRegisterCommand_NoValidPlatforms(t *testing.T) {
	profiles := newFakeProfiles()
	cmd := NewProfileRegisterCommand(ProfileCommandConfig{
		Catalog:  newFakeCatalog(types.Platform{ID: 1, Name: "steam", IconRef: 10}),
		Profiles: profiles,
	})

	var result ProfileChangeResult
	err := cmd.Execute(context.Background(), ProfileRegisterInput{
		MemberID:  1,
		Gamertag:  "tag",
		Platforms: []string{"n64"},
		Result:    &result,
	})
	require.ErrorIs(t, err, ErrNoValidPlatforms)
	require.Equal(t, []string{"n64"}, result.Invalid)
	require.Empty(t, profiles.registered)
}

func TestProfileRegisterCommand_Validation(t *testing.T) {
	cmd := NewProfileRegisterCommand(ProfileCommandConfig{Catalog: newFakeCatalog(), Profiles: newFakeProfiles()})
	ctx := context.Background()

	require.ErrorIs(t, cmd.Execute(ctx, ProfileRegisterInput{Gamertag: "x", Platforms: []string{"a"}}), types.ErrMemberIDRequired)
	require.ErrorIs(t, cmd.Execute(ctx, ProfileRegisterInput{MemberID: 1, Platforms: []string{"a"}}), types.ErrGamertagRequired)
	require.ErrorIs(t, cmd.Execute(ctx, ProfileRegisterInput{MemberID: 1, Gamertag: "x"}), ErrPlatformsRequired)
}

func TestProfileRegisterCommand_StorageErrorPropagates(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.err = types.StorageConstraint(errors.New("fk"))
	sink := &recordingActivitySink{}
	cmd := NewProfileRegisterCommand(ProfileCommandConfig{
		Catalog:  newFakeCatalog(types.Platform{ID: 1, Name: "steam", IconRef: 10}),
		Profiles: profiles,
		Activity: sink,
	})

	err := cmd.Execute(context.Background(), ProfileRegisterInput{MemberID: 1, Gamertag: "x", Platforms: []string{"steam"}})
	require.ErrorIs(t, err, types.ErrStorageConstraint)
	require.Empty(t, sink.records)
}

func TestProfileUnregisterCommand_OnlyRecordsRemovals(t *testing.T) {
	catalog := newFakeCatalog(
		types.Platform{ID: 1, Name: "steam", IconRef: 10},
		types.Platform{ID: 2, Name: "origin", IconRef: 20},
	)
	profiles := newFakeProfiles()
	profiles.held[5] = map[int64]bool{1: true}
	sink := &recordingActivitySink{}
	cmd := NewProfileUnregisterCommand(ProfileCommandConfig{Catalog: catalog, Profiles: profiles, Activity: sink})

	var result ProfileChangeResult
	err := cmd.Execute(context.Background(), ProfileUnregisterInput{MemberID: 5, Platforms: []string{"origin"}, Result: &result})
	require.NoError(t, err)
	require.Zero(t, result.Count)
	require.Empty(t, sink.records)

	err = cmd.Execute(context.Background(), ProfileUnregisterInput{MemberID: 5, Platforms: []string{"steam", "origin"}, Result: &result})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	require.Equal(t, types.VerbProfileUnregistered, sink.last().Verb)
	require.Equal(t, 1, sink.last().Data["count"])
}

func TestFlowRecorder_MapsKindToVerb(t *testing.T) {
	sink := &recordingActivitySink{}
	var events []types.ProfileEvent
	record := NewFlowRecorder(ProfileCommandConfig{
		Activity: sink,
		Hooks: types.Hooks{
			AfterProfileChange: func(_ context.Context, e types.ProfileEvent) { events = append(events, e) },
		},
		Clock: fixedClock{},
	})

	platforms := []types.Platform{{ID: 1, Name: "steam"}, {ID: 2, Name: "origin"}}
	record(context.Background(), flow.Result{
		FlowID:    uuid.New(),
		Kind:      flow.KindRegister,
		MemberID:  9,
		GuildID:   4,
		Gamertag:  "Ninja",
		Platforms: platforms,
		Count:     2,
	})
	record(context.Background(), flow.Result{
		FlowID:    uuid.New(),
		Kind:      flow.KindUnregister,
		MemberID:  9,
		Platforms: platforms[:1],
		Count:     1,
	})

	require.Len(t, sink.records, 2)
	require.Equal(t, types.VerbProfileRegistered, sink.records[0].Verb)
	require.Equal(t, "Ninja", sink.records[0].Data["gamertag"])
	require.Equal(t, ChannelGateway, sink.records[0].Channel)
	require.Equal(t, types.VerbProfileUnregistered, sink.records[1].Verb)
	_, hasTag := sink.records[1].Data["gamertag"]
	require.False(t, hasTag)
	require.Len(t, events, 2)
	require.Equal(t, []int64{1, 2}, events[0].PlatformIDs)
}

func TestRecordActivity_SinkFailureDoesNotBlockHook(t *testing.T) {
	sink := &recordingActivitySink{err: errors.New("sink down")}
	fired := false
	recordActivity(context.Background(), sink, types.Hooks{
		AfterActivity: func(context.Context, types.ActivityRecord) { fired = true },
	}, nil, types.ActivityRecord{Verb: types.VerbPrefixUpdated})
	require.True(t, fired)
}
