package inmemory

import (
	"sync"
	"testing"
	"time"

	"github.com/jitsucom/snapshotview/locks/base"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestLockIsExclusive(t *testing.T) {
	factory, closer := NewLockFactory()
	defer closer.Close()

	first := factory.CreateLock("snapshot_view_events")
	require.NoError(t, first.TryLock())

	second := factory.CreateLock("snapshot_view_events")
	require.Equal(t, base.ErrAlreadyLocked, second.TryLock())
	require.Equal(t, base.ErrAlreadyLocked, second.Lock(10*time.Millisecond))

	other := factory.CreateLock("snapshot_view_users")
	require.NoError(t, other.TryLock())

	require.True(t, first.Unlock())
	require.NoError(t, second.TryLock())
	require.True(t, second.Unlock())
	require.False(t, second.Unlock())
}

func TestLockWaitsForRelease(t *testing.T) {
	factory, closer := NewLockFactory()
	defer closer.Close()

	holder := factory.CreateLock("dataset")
	require.NoError(t, holder.Lock(0))

	go func() {
		time.Sleep(20 * time.Millisecond)
		holder.Unlock()
	}()

	require.NoError(t, factory.CreateLock("dataset").Lock(time.Second))
}

func TestLockSerializesCriticalSections(t *testing.T) {
	factory, closer := NewLockFactory()
	defer closer.Close()

	inside := atomic.NewInt32(0)
	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := factory.CreateLock("dataset")
			require.NoError(t, lock.Lock(5*time.Second))
			require.Equal(t, int32(1), inside.Inc())
			time.Sleep(time.Millisecond)
			inside.Dec()
			lock.Unlock()
		}()
	}
	wg.Wait()
}

func TestCloserReleasesHeldLocks(t *testing.T) {
	factory, closer := NewLockFactory()
	require.NoError(t, factory.CreateLock("dataset").TryLock())

	require.NoError(t, closer.Close())
	require.NoError(t, factory.CreateLock("dataset").TryLock())
}
