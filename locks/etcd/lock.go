package etcd

import (
	"context"
	"io"
	"time"

	"github.com/jitsucom/snapshotview/locks"
	"github.com/jitsucom/snapshotview/locks/base"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/jitsucom/snapshotview/timestamp"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
)

const (
	keyPrefix            = "/snapshotview/locks/"
	defaultUnlockRetries = 5
	unlockTimeout        = time.Minute
)

//LockFactory creates locks as etcd concurrency mutexes under /snapshotview/locks/
type LockFactory struct {
	ctx         context.Context
	client      *clientv3.Client
	locksCloser *base.LocksCloser
}

//NewLockFactory returns factory and closer releasing every held lock. client must outlive the closer
func NewLockFactory(ctx context.Context, client *clientv3.Client) (*LockFactory, io.Closer) {
	locksCloser := base.NewLocksCloser()
	return &LockFactory{ctx: ctx, client: client, locksCloser: locksCloser}, locksCloser
}

func (lf *LockFactory) CreateLock(name string) locks.Lock {
	return &Lock{name: name, factory: lf}
}

//Lock is held while its etcd session lease is alive: a killed process releases it after the lease TTL
type Lock struct {
	name    string
	factory *LockFactory

	//exist only while locked
	mutex   *concurrency.Mutex
	session *concurrency.Session
}

//Lock waits for the mutex until timeout
func (l *Lock) Lock(timeout time.Duration) error {
	return l.acquire(func(ctx context.Context, mutex *concurrency.Mutex) error {
		ctx, cancel := context.WithDeadline(ctx, timestamp.Now().Add(timeout))
		defer cancel()

		err := mutex.Lock(ctx)
		if err == context.DeadlineExceeded {
			return concurrency.ErrLocked
		}
		return err
	})
}

func (l *Lock) TryLock() error {
	return l.acquire(func(ctx context.Context, mutex *concurrency.Mutex) error {
		return mutex.TryLock(ctx)
	})
}

func (l *Lock) acquire(lock func(ctx context.Context, mutex *concurrency.Mutex) error) error {
	ctx := l.factory.ctx
	//the session lives until Unlock: its ctx must not be canceled before
	session, err := concurrency.NewSession(l.factory.client, concurrency.WithContext(ctx))
	if err != nil {
		return err
	}

	mutex := concurrency.NewMutex(session, keyPrefix+l.name)
	if err := lock(ctx, mutex); err != nil {
		session.Close()
		if err == concurrency.ErrLocked {
			return base.ErrAlreadyLocked
		}
		return err
	}

	l.mutex = mutex
	l.session = session
	l.factory.locksCloser.Add(l.name, l)
	return nil
}

//Unlock releases the mutex with defaultUnlockRetries attempts
func (l *Lock) Unlock() bool {
	if l.mutex == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(l.factory.ctx, unlockTimeout)
	defer cancel()

	for i := 1; i <= defaultUnlockRetries; i++ {
		if err := l.mutex.Unlock(ctx); err != nil {
			logging.SystemErrorf("error unlocking %s after %d attempts: %v", l.name, i, err)
			continue
		}

		l.factory.locksCloser.Remove(l.name)
		l.session.Close()
		l.mutex, l.session = nil, nil
		return true
	}

	return false
}
