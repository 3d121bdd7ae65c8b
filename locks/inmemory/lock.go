package inmemory

import (
	"sync"
	"time"

	"github.com/jitsucom/snapshotview/locks/base"
)

const defaultLockAttempts = 100

//Lock is an in-memory lock
type Lock struct {
	name        string
	locks       *sync.Map
	locksCloser *base.LocksCloser
}

func newLock(name string, locks *sync.Map, locksCloser *base.LocksCloser) *Lock {
	return &Lock{
		name:        name,
		locks:       locks,
		locksCloser: locksCloser,
	}
}

//Lock attempts to acquire lock within given amount of time. Returns base.ErrAlreadyLocked if
//the lock isn't free by that time
func (l *Lock) Lock(timeout time.Duration) error {
	attemptTimeout := timeout / defaultLockAttempts
	for currentAttempt := 0; currentAttempt <= defaultLockAttempts; currentAttempt++ {
		if l.acquire() {
			return nil
		}
		if timeout == 0 {
			break
		}

		time.Sleep(attemptTimeout)
	}

	return base.ErrAlreadyLocked
}

//TryLock makes a single attempt
func (l *Lock) TryLock() error {
	if l.acquire() {
		return nil
	}

	return base.ErrAlreadyLocked
}

//Unlock unlocks the key. Returns false if it wasn't locked
func (l *Lock) Unlock() bool {
	_, loaded := l.locks.LoadAndDelete(l.name)
	l.locksCloser.Remove(l.name)
	return loaded
}

func (l *Lock) acquire() bool {
	if _, loaded := l.locks.LoadOrStore(l.name, true); loaded {
		return false
	}

	l.locksCloser.Add(l.name, l)
	return true
}
