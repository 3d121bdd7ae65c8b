package safego

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestHandlePanicAndRestart(t *testing.T) {
	GlobalRecoverHandler = func(value interface{}) {}

	counter := atomic.NewInt64(0)
	RunWithRestart(func() {
		counter.Inc()
		panic("panic")
	}).WithRestartTimeout(time.Millisecond)

	require.Eventually(t, func() bool { return counter.Load() > 2 }, 5*time.Second, time.Millisecond)
}

func TestRunDoesNotRestart(t *testing.T) {
	recovered := make(chan interface{}, 1)
	GlobalRecoverHandler = func(value interface{}) { recovered <- value }

	counter := atomic.NewInt64(0)
	Run(func() {
		counter.Inc()
		panic("boom")
	})

	select {
	case v := <-recovered:
		require.Equal(t, "boom", v)
	case <-time.After(time.Second):
		t.Fatal("panic wasn't recovered")
	}
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int64(1), counter.Load())
}
