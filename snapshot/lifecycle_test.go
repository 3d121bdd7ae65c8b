package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/jitsucom/snapshotview/adapters"
	"github.com/stretchr/testify/require"
)

func TestMaterializeIsIdempotent(t *testing.T) {
	for _, mode := range ddlModes {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			storage := newEventsStorage(t, mode)
			dataset := newEventsDataset(t, 2)
			view := New(storage, dataset)

			require.NoError(t, view.Materialize(ctx))
			tables, err := storage.ListTables(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"events", "events_a", "events_b", "events_switch"}, tables)

			_, err = view.NewVersion(ctx, insertUnit(t, storage, dataset, Completed(nil), 1))
			require.NoError(t, err)

			require.NoError(t, view.Materialize(ctx))
			tablesAfter, err := storage.ListTables(ctx)
			require.NoError(t, err)
			require.Equal(t, tables, tablesAfter)
			require.Equal(t, "events_a", view.ActiveName(ctx))
			requireIDs(t, storage, "events_a", 1)
		})
	}
}

func TestMaterializeRequiresBase(t *testing.T) {
	storage := adapters.NewInMemory()
	err := New(storage, newEventsDataset(t, 2)).Materialize(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "events_a")
}

func TestDecommissionMovesActiveIntoBase(t *testing.T) {
	for _, mode := range ddlModes {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			storage := newEventsStorage(t, mode)
			dataset := newEventsDataset(t, 2)
			view := New(storage, dataset)
			require.NoError(t, storage.Insert(ctx, "events", map[string]interface{}{"id": 100}))

			_, err := view.NewVersion(ctx, insertUnit(t, storage, dataset, Completed(nil), 1, 2))
			require.NoError(t, err)

			require.NoError(t, view.Decommission(ctx))
			tables, err := storage.ListTables(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"events"}, tables)
			requireIDs(t, storage, "events", 1, 2)
			require.Equal(t, "events", view.ActiveName(ctx))

			//decommission of a plain table is a no-op
			require.NoError(t, view.Decommission(ctx))
			requireIDs(t, storage, "events", 1, 2)
		})
	}
}

func TestDecommissionWhenBaseIsActive(t *testing.T) {
	ctx := context.Background()
	storage := newEventsStorage(t, ddlModes[0])
	dataset := newEventsDataset(t, 1)
	view := New(storage, dataset)

	for i := 1; i <= 2; i++ {
		_, err := view.NewVersion(ctx, insertUnit(t, storage, dataset, Completed(nil), i))
		require.NoError(t, err)
	}
	require.Equal(t, "events", view.ActiveName(ctx))

	storage.FailOn(adapters.OpTruncate, "events", errors.New("base must not be truncated"))
	require.NoError(t, view.Decommission(ctx))
	requireIDs(t, storage, "events", 2)
	requireTableExists(t, storage, "events_a", false)
	requireTableExists(t, storage, "events_switch", false)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	storage := newEventsStorage(t, ddlModes[0])
	dataset := newEventsDataset(t, 2)
	view := New(storage, dataset)

	status, err := view.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, &Status{
		Dataset:     "events",
		Active:      "events",
		Working:     "events_a",
		SwitchTable: "events_switch",
		Slots: []SlotStatus{
			{Name: "events", Exists: true, Active: true},
			{Name: "events_a", Working: true},
			{Name: "events_b"},
		},
	}, status)

	require.NoError(t, view.Rotate(ctx))
	status, err = view.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "events_a", status.Active)
	require.Equal(t, "events_b", status.Working)
	for _, slot := range status.Slots {
		require.True(t, slot.Exists, slot.Name)
	}
}

func TestDropAll(t *testing.T) {
	ctx := context.Background()
	storage := newEventsStorage(t, ddlModes[0])
	dataset := newEventsDataset(t, 3)
	require.NoError(t, New(storage, dataset).Materialize(ctx))
	for _, table := range []string{"events_archive", "events_ab", "other_a", "events_1"} {
		require.NoError(t, storage.CreateTable(ctx, table, []string{"id"}))
	}

	require.NoError(t, DropAll(ctx, storage, "events"))
	tables, err := storage.ListTables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"events", "events_1", "events_ab", "events_archive", "other_a"}, tables)

	//nothing matches
	require.NoError(t, DropAll(ctx, storage, "events"))
}

func TestDropAllCollectsErrors(t *testing.T) {
	ctx := context.Background()
	storage := newEventsStorage(t, ddlModes[0])
	require.NoError(t, New(storage, newEventsDataset(t, 2)).Materialize(ctx))

	storage.FailOn(adapters.OpDrop, "events_a", errors.New("locked by reader"))
	storage.FailOn(adapters.OpDrop, "events_switch", errors.New("permission denied"))

	err := DropAll(ctx, storage, "events")
	require.Error(t, err)
	require.Contains(t, err.Error(), "locked by reader")
	require.Contains(t, err.Error(), "permission denied")

	tables, err := storage.ListTables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"events", "events_a", "events_switch"}, tables)
}
