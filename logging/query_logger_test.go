package logging

import (
	"testing"
	"time"

	"github.com/jitsucom/snapshotview/timestamp"
	"github.com/stretchr/testify/require"
)

func TestQueryLoggerStreams(t *testing.T) {
	ddl := NewStringWriter()
	queries := NewStringWriter()
	ql := NewQueryLogger("pg", ddl, queries)

	ql.LogDDL("CREATE TABLE t (a text)")
	ql.LogQueryWithValues("INSERT INTO t VALUES ($1)", []interface{}{"v1"})

	require.Contains(t, ddl.String(), "[DEBUG]: [pg] CREATE TABLE t (a text)")
	require.NotContains(t, ddl.String(), "INSERT")
	require.Contains(t, queries.String(), "INSERT INTO t VALUES ($1); values: [v1]")
}

func TestZeroQueryLoggerIsNoop(t *testing.T) {
	var ql *QueryLogger
	ql.LogDDL("DROP TABLE t")
	(&QueryLogger{}).LogQuery("SELECT 1")
}

func TestToLevel(t *testing.T) {
	require.Equal(t, DEBUG, ToLevel(" Debug "))
	require.Equal(t, WARN, ToLevel("warn"))
	require.Equal(t, UNKNOWN, ToLevel("verbose"))
	require.Equal(t, "error", ERROR.String())
}

func TestInitGlobalLoggerFiltersLevels(t *testing.T) {
	w := NewStringWriter()
	require.NoError(t, InitGlobalLogger(w, "warn"))
	defer InitGlobalLogger(NewStringWriter(), "info")

	Infof("rotated %s", "events")
	Warnf("switch table %s is empty", "events_switch")

	require.NotContains(t, w.String(), "rotated events")
	require.Contains(t, w.String(), "[WARN]: switch table events_switch is empty")

	require.Error(t, InitGlobalLogger(w, "verbose"))
}

func TestDateTimeWriterProxy(t *testing.T) {
	timestamp.Freeze(time.Date(2021, 9, 1, 12, 30, 0, 0, time.UTC))
	defer timestamp.Unfreeze()

	w := NewStringWriter()
	DateTimeWriterProxy{writer: w}.Write([]byte("message\n"))
	require.Equal(t, "2021-09-01 12:30:00 message\n", w.String())
}
