package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	tests := []struct {
		name         string
		base         string
		count        int
		expectedRing []string
		expectedErr  string
	}{
		{
			"default count",
			"events",
			DefaultHistoricalVersionCount,
			[]string{"events", "events_a", "events_b"},
			"",
		},
		{
			"single historical version",
			"users",
			1,
			[]string{"users", "users_a"},
			"",
		},
		{
			"trimmed base name",
			"  events ",
			3,
			[]string{"events", "events_a", "events_b", "events_c"},
			"",
		},
		{
			"zero count",
			"events",
			0,
			nil,
			"historical version count must be in [1, 26], got: 0",
		},
		{
			"too many versions",
			"events",
			27,
			nil,
			"historical version count must be in [1, 26], got: 27",
		},
		{
			"empty base name",
			" ",
			2,
			nil,
			"base table name is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataset, err := NewDataset(tt.base, WithHistoricalVersionCount(tt.count))
			if tt.expectedErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expectedRing, dataset.Ring())
			require.Equal(t, tt.expectedRing[0]+"_switch", dataset.SwitchTableName())
			require.Equal(t, tt.expectedRing[1:], dataset.SuffixedNames())
		})
	}
}

func TestRingProperties(t *testing.T) {
	for count := 1; count <= maxVersionCount; count++ {
		dataset, err := NewDataset("events", WithHistoricalVersionCount(count))
		require.NoError(t, err)

		ring := dataset.Ring()
		require.Len(t, ring, count+1)
		require.Equal(t, "events", ring[0])

		unique := map[string]bool{}
		for _, name := range ring {
			unique[name] = true
			require.True(t, dataset.Contains(name))
		}
		require.Len(t, unique, count+1, "ring names must be distinct")

		//successor is a bijection without fixed points: len(ring) steps return to the start
		for _, start := range ring {
			name := start
			for i := 0; i < len(ring); i++ {
				next, err := dataset.Successor(name)
				require.NoError(t, err)
				require.NotEqual(t, name, next)
				name = next
			}
			require.Equal(t, start, name)
		}
	}
}

func TestRingIsCopied(t *testing.T) {
	dataset, err := NewDataset("events")
	require.NoError(t, err)

	ring := dataset.Ring()
	ring[0] = "changed"
	require.Equal(t, "events", dataset.Ring()[0])
}

func TestSuccessorUnknownName(t *testing.T) {
	dataset, err := NewDataset("events")
	require.NoError(t, err)

	next, err := dataset.Successor("events_a")
	require.NoError(t, err)
	require.Equal(t, "events_b", next)

	next, err = dataset.Successor("events_b")
	require.NoError(t, err)
	require.Equal(t, "events", next)

	_, err = dataset.Successor("events_z")
	require.Error(t, err)
	require.Contains(t, err.Error(), "events_z")
	require.False(t, dataset.Contains("events_switch"))
}

func TestTableNameForModel(t *testing.T) {
	require.Equal(t, "user_event", TableNameForModel("UserEvent"))
	require.Equal(t, "events", TableNameForModel(" events "))
}
