package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFreeze(t *testing.T) {
	at := time.Date(2021, 9, 1, 12, 30, 0, 0, time.UTC)
	require.NotEqual(t, at, Now(), "Now() should provide real current time")

	Freeze(at)
	require.Equal(t, at, Now())
	require.Equal(t, "2021-09-01 12:30:00", Now().Format(LogsLayout))

	Unfreeze()
	require.True(t, Now().After(at), "Now() should provide real time after unfreezing")
}
