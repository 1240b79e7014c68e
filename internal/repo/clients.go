// Package repo: process-wide store clients.
//
// Clients opens each store client at most once per process. The first call
// to DB or Redis performs the dial; every later call returns the same handle
// (or the same error). Handles are treated as read-only shared resources
// after initialization.
package repo

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RedisOptions locates the Redis document store.
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// Clients is the lazily-initialized registry of store handles.
type Clients struct {
	db    DBOptions
	redis RedisOptions

	dbOnce sync.Once
	dbConn *gorm.DB
	dbErr  error

	redisOnce   sync.Once
	redisClient redis.UniversalClient
	redisErr    error

	// openDB is a seam for tests.
	openDB func(DBOptions) (*gorm.DB, error)
}

// NewClients returns a registry; nothing is dialed until first use.
func NewClients(db DBOptions, rds RedisOptions) *Clients {
	return &Clients{db: db, redis: rds, openDB: Open}
}

// DB returns the relational handle, opening and migrating it on first use.
func (c *Clients) DB() (*gorm.DB, error) {
	c.dbOnce.Do(func() {
		log.Info().Str("driver", c.db.Driver).Msg("initializing relational store")
		c.dbConn, c.dbErr = c.openDB(c.db)
		if c.dbErr == nil {
			log.Info().Msg("relational store ready")
		}
	})
	return c.dbConn, c.dbErr
}

// Redis returns the Redis client, dialing and pinging it on first use.
func (c *Clients) Redis(ctx context.Context) (redis.UniversalClient, error) {
	c.redisOnce.Do(func() {
		if strings.TrimSpace(c.redis.Addr) == "" {
			c.redisErr = errors.New("redis: addr is required")
			return
		}
		log.Info().Str("addr", c.redis.Addr).Msg("initializing document store")
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:       []string{c.redis.Addr},
			Username:    c.redis.Username,
			Password:    c.redis.Password,
			DB:          c.redis.DB,
			DialTimeout: 5 * time.Second,
			MaxRetries:  2,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			c.redisErr = errors.Wrap(err, "redis: ping")
			return
		}
		c.redisClient = client
		log.Info().Msg("document store ready")
	})
	return c.redisClient, c.redisErr
}

// Close releases whichever handles were opened.
func (c *Clients) Close() error {
	var errs []error
	if c.dbConn != nil {
		if sqlDB, err := c.dbConn.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if c.redisClient != nil {
		errs = append(errs, c.redisClient.Close())
	}
	return stderrors.Join(errs...)
}
