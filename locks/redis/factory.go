package redis

import (
	"context"
	"io"

	"github.com/go-redsync/redsync/v4"
	rsyncpool "github.com/go-redsync/redsync/v4/redis/redigo"
	"github.com/gomodule/redigo/redis"
	"github.com/jitsucom/snapshotview/locks"
	"github.com/jitsucom/snapshotview/locks/base"
)

const keyPrefix = "snapshotview:lock:"

//LockFactory creates redsync mutexes with snapshotview:lock: keys prefix
type LockFactory struct {
	ctx         context.Context
	redsync     *redsync.Redsync
	locksCloser *base.LocksCloser
}

//NewLockFactory returns factory and closer releasing every held lock. pool must outlive the closer
func NewLockFactory(ctx context.Context, pool *redis.Pool) (*LockFactory, io.Closer) {
	locksCloser := base.NewLocksCloser()
	return &LockFactory{
		ctx:         ctx,
		redsync:     redsync.New(rsyncpool.NewPool(pool)),
		locksCloser: locksCloser,
	}, locksCloser
}

func (lf *LockFactory) CreateLock(name string) locks.Lock {
	return &Lock{name: name, factory: lf}
}
