package snapshot

import (
	"context"
	"testing"

	"github.com/jitsucom/snapshotview/adapters"
	"github.com/stretchr/testify/require"
)

type ddlMode struct {
	name       string
	newStorage func() *adapters.InMemory
}

var ddlModes = []ddlMode{
	{"transactional DDL", adapters.NewInMemory},
	{"non-transactional DDL", adapters.NewInMemoryNonTransactionalDDL},
}

//newEventsStorage returns storage with the events base table (id column, primary key constraint)
func newEventsStorage(t *testing.T, mode ddlMode) *adapters.InMemory {
	storage := mode.newStorage()
	require.NoError(t, storage.CreateTable(context.Background(), "events", []string{"id"}, "events_pkey"))
	return storage
}

func newEventsDataset(t *testing.T, count int) *Dataset {
	dataset, err := NewDataset("events", WithHistoricalVersionCount(count))
	require.NoError(t, err)
	return dataset
}

func requireTableExists(t *testing.T, storage *adapters.InMemory, table string, expected bool) {
	exists, err := storage.TableExists(context.Background(), table)
	require.NoError(t, err)
	require.Equal(t, expected, exists, "table %s existence", table)
}

func requireIDs(t *testing.T, storage *adapters.InMemory, table string, expected ...int) {
	rows, err := storage.Rows(table)
	require.NoError(t, err)

	ids := []int{}
	for _, row := range rows {
		ids = append(ids, row["id"].(int))
	}
	if expected == nil {
		expected = []int{}
	}
	require.ElementsMatch(t, expected, ids, "table %s rows", table)
}

//insertUnit writes ids into the table resolved from the unit ctx
func insertUnit(t *testing.T, storage *adapters.InMemory, dataset *Dataset, outcome Outcome, ids ...int) Unit {
	return func(ctx context.Context) Outcome {
		table, ok := OverrideFrom(ctx, dataset)
		require.True(t, ok, "unit ctx must carry the working table")
		for _, id := range ids {
			require.NoError(t, storage.Insert(ctx, table, map[string]interface{}{"id": id}))
		}
		return outcome
	}
}
