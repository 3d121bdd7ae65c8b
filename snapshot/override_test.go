package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticReader string

func (sr staticReader) ActiveName(ctx context.Context) string {
	return string(sr)
}

func TestResolveActiveName(t *testing.T) {
	events := newEventsDataset(t, 2)
	users, err := NewDataset("users")
	require.NoError(t, err)

	ctx := context.Background()
	require.Equal(t, "events_b", ResolveActiveName(ctx, events, staticReader("events_b")))

	overridden := WithOverride(ctx, events, "events_a")
	require.Equal(t, "events_a", ResolveActiveName(overridden, events, staticReader("events_b")))
	//overrides are per dataset
	require.Equal(t, "users", ResolveActiveName(overridden, users, staticReader("users")))

	//datasets are keyed by base table name
	sameBase := newEventsDataset(t, 1)
	name, ok := OverrideFrom(overridden, sameBase)
	require.True(t, ok)
	require.Equal(t, "events_a", name)

	_, ok = OverrideFrom(ctx, events)
	require.False(t, ok)
}
