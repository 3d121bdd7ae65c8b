package locks

import "time"

//LockFactory creates named locks. Locks with equal names are mutually exclusive across all processes
//sharing the factory backend (memory, redis or etcd)
type LockFactory interface {
	CreateLock(name string) Lock
}

//Lock is a non reentrant named lock
type Lock interface {
	//Lock waits up to timeout for the lock
	Lock(timeout time.Duration) error
	//TryLock returns base.ErrAlreadyLocked at once if the lock is held
	TryLock() error
	//Unlock returns false if the lock wasn't held
	Unlock() bool
}
