package inmemory

import (
	"io"
	"sync"

	"github.com/jitsucom/snapshotview/locks"
	"github.com/jitsucom/snapshotview/locks/base"
)

//LockFactory is an in-memory based LockFactory. Locks are visible inside one process only
type LockFactory struct {
	locks       *sync.Map
	locksCloser *base.LocksCloser
}

//NewLockFactory returns in-memory LockFactory and closer for releasing held locks
func NewLockFactory() (*LockFactory, io.Closer) {
	lc := base.NewLocksCloser()
	return &LockFactory{
		locks:       &sync.Map{},
		locksCloser: lc,
	}, lc
}

//CreateLock returns lock instance (not yet locked)
func (lf *LockFactory) CreateLock(name string) locks.Lock {
	return newLock(name, lf.locks, lf.locksCloser)
}
