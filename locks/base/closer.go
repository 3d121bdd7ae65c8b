package base

import (
	"sync"

	"github.com/jitsucom/snapshotview/logging"
)

type unlocker interface {
	Unlock() bool
}

//LocksCloser is designed for graceful closing all locks on shutdown
type LocksCloser struct {
	mutex sync.Mutex
	locks map[string]unlocker
}

func NewLocksCloser() *LocksCloser {
	return &LocksCloser{
		locks: map[string]unlocker{},
	}
}

func (lc *LocksCloser) Add(identifier string, lock unlocker) {
	lc.mutex.Lock()
	lc.locks[identifier] = lock
	lc.mutex.Unlock()
}

func (lc *LocksCloser) Remove(identifier string) {
	lc.mutex.Lock()
	delete(lc.locks, identifier)
	lc.mutex.Unlock()
}

//Close unlocks every still held lock
func (lc *LocksCloser) Close() error {
	lc.mutex.Lock()
	held := make(map[string]unlocker, len(lc.locks))
	for id, lock := range lc.locks {
		held[id] = lock
	}
	lc.mutex.Unlock()

	for id, lock := range held {
		logging.Warnf("[graceful] unlocking %s ...", id)
		lock.Unlock()
	}

	return nil
}
