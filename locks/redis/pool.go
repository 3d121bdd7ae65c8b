package redis

import (
	"strconv"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
)

//NewRedisPool returns redigo pool for host:port. Quotes around host are removed
func NewRedisPool(host string, port int, password string) *redis.Pool {
	host = strings.Trim(host, `"'`)
	return &redis.Pool{
		MaxIdle:     10,
		MaxActive:   100,
		IdleTimeout: 240 * time.Second,

		Wait: false,
		Dial: func() (redis.Conn, error) {
			return redis.Dial(
				"tcp",
				host+":"+strconv.Itoa(port),
				redis.DialConnectTimeout(10*time.Second),
				redis.DialReadTimeout(10*time.Second),
				redis.DialPassword(password),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			_, err := c.Do("PING")
			return err
		},
	}
}

//Ping checks that the pool can reach redis
func Ping(pool *redis.Pool) error {
	connection := pool.Get()
	defer connection.Close()

	_, err := redis.String(connection.Do("PING"))
	return err
}
