package redis

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/jitsucom/snapshotview/locks/base"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/safego"
)

const (
	defaultRetries       = 10
	defaultExpiration    = 8 * time.Second
	defaultUnlockRetries = 5
)

//Lock is a redis key with short expiration. It is extended every expiration/2 while held,
//so a killed process releases it after defaultExpiration
type Lock struct {
	name    string
	factory *LockFactory

	//exist only while locked
	mutex     *redsync.Mutex
	heartbeat chan struct{}
}

//Lock makes defaultRetries attempts within timeout
func (l *Lock) Lock(timeout time.Duration) error {
	return l.acquire(redsync.WithRetryDelay(timeout/defaultRetries), redsync.WithTries(defaultRetries))
}

//TryLock makes a single attempt
func (l *Lock) TryLock() error {
	return l.acquire(redsync.WithRetryDelay(0), redsync.WithTries(1))
}

func (l *Lock) acquire(options ...redsync.Option) error {
	options = append(options, redsync.WithExpiry(defaultExpiration))
	mutex := l.factory.redsync.NewMutex(keyPrefix+l.name, options...)
	if err := mutex.LockContext(l.factory.ctx); err != nil {
		if err == redsync.ErrFailed {
			return base.ErrAlreadyLocked
		}
		return err
	}

	l.mutex = mutex
	l.heartbeat = make(chan struct{})
	l.startHeartbeat(mutex, l.heartbeat)
	l.factory.locksCloser.Add(l.name, l)
	return nil
}

func (l *Lock) startHeartbeat(mutex *redsync.Mutex, stop chan struct{}) {
	ticker := time.NewTicker(defaultExpiration / 2)
	safego.Run(func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := mutex.ExtendContext(l.factory.ctx); err != nil {
					logging.SystemErrorf("[lock: %s] error extending: %v", l.name, err)
				}
			}
		}
	})
}

//Unlock stops the heartbeat and deletes the key with defaultUnlockRetries attempts
func (l *Lock) Unlock() bool {
	if l.mutex == nil {
		return false
	}

	if l.heartbeat != nil {
		close(l.heartbeat)
		l.heartbeat = nil
	}
	l.factory.locksCloser.Remove(l.name)

	for i := 1; i <= defaultUnlockRetries; i++ {
		result, err := l.mutex.UnlockContext(l.factory.ctx)
		if err != nil {
			logging.SystemErrorf("error unlocking %s after %d attempts: %v", l.name, i, err)
			continue
		}

		l.mutex = nil
		return result
	}

	return false
}
