package appconfig

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jitsucom/snapshotview/locks"
	"github.com/jitsucom/snapshotview/locks/etcd"
	"github.com/jitsucom/snapshotview/locks/inmemory"
	"github.com/jitsucom/snapshotview/locks/redis"
	"github.com/jitsucom/snapshotview/logging"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	NoLocksType       = "none"
	InMemoryLocksType = "inmemory"
	RedisLocksType    = "redis"
	EtcdLocksType     = "etcd"

	etcdDialTimeout = 5 * time.Second
)

type closerFunc func() error

func (cf closerFunc) Close() error {
	return cf()
}

//LockTimeout returns locks.timeout_sec as duration
func LockTimeout() time.Duration {
	return time.Duration(cast.ToInt64(viper.Get("locks.timeout_sec"))) * time.Second
}

//CreateLockFactory returns configured by locks.type LockFactory and closer of the underlying resources.
//Returns nil factory if locks are disabled
func CreateLockFactory(ctx context.Context) (locks.LockFactory, io.Closer, error) {
	lockType := strings.ToLower(strings.TrimSpace(viper.GetString("locks.type")))
	switch lockType {
	case "", NoLocksType:
		logging.Info("Sessions locks are disabled: sessions of one dataset must not run concurrently")
		return nil, nil, nil
	case InMemoryLocksType:
		factory, closer := inmemory.NewLockFactory()
		return factory, closer, nil
	case RedisLocksType:
		host := viper.GetString("locks.redis.host")
		if host == "" {
			return nil, nil, fmt.Errorf("locks.redis.host is required for %s locks", RedisLocksType)
		}
		port, err := cast.ToIntE(viper.Get("locks.redis.port"))
		if err != nil {
			return nil, nil, fmt.Errorf("Error parsing locks.redis.port: %v", err)
		}

		pool := redis.NewRedisPool(host, port, viper.GetString("locks.redis.password"))
		if err := redis.Ping(pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("Error connecting to redis %s:%d: %v", host, port, err)
		}

		factory, locksCloser := redis.NewLockFactory(ctx, pool)
		logging.Infof("Using redis sessions locks: %s:%d", host, port)
		return factory, closerFunc(func() error {
			locksCloser.Close()
			return pool.Close()
		}), nil
	case EtcdLocksType:
		endpoint := viper.GetString("locks.etcd.endpoint")
		if endpoint == "" {
			return nil, nil, fmt.Errorf("locks.etcd.endpoint is required for %s locks", EtcdLocksType)
		}

		client, err := clientv3.New(clientv3.Config{
			Endpoints:   []string{endpoint},
			DialTimeout: etcdDialTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("Error connecting to etcd %s: %v", endpoint, err)
		}

		factory, locksCloser := etcd.NewLockFactory(ctx, client)
		logging.Infof("Using etcd sessions locks: %s", endpoint)
		return factory, closerFunc(func() error {
			locksCloser.Close()
			return client.Close()
		}), nil
	default:
		return nil, nil, fmt.Errorf("Unknown locks type: %q. Available: [%s, %s, %s, %s]", lockType, NoLocksType, InMemoryLocksType, RedisLocksType, EtcdLocksType)
	}
}
