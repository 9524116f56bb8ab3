package api

import (
	"context"
	"time"

	"sweepnav/internal/cache"
	"sweepnav/internal/config"
	"sweepnav/internal/logging"
	"sweepnav/internal/store"
)

type Server struct {
	Store  store.Store
	Broker EventBroker
	Cache  *cache.Cache
	Cfg    config.Config
}

// NewServer wires the store, broker and cache from config. Without a
// DATABASE_URL the in-memory store serves; without a REDIS_URL the
// broker is process-local and there is no result cache.
func NewServer(cfg config.Config) (*Server, error) {
	log := logging.Component("api")

	var s store.Store
	if cfg.DatabaseURL == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := sp.Migrate(context.Background()); err != nil {
			return nil, err
		}
		s = sp
	}

	var broker EventBroker
	var c *cache.Cache
	if cfg.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis broker unavailable, using in-memory broker")
			broker = NewBroker()
		} else {
			broker = rb
		}
		if rc, err := cache.New(cfg.RedisURL, time.Duration(cfg.CacheTTLSec)*time.Second); err == nil {
			c = rc
		} else {
			log.Warn().Err(err).Msg("result cache disabled")
		}
	} else {
		broker = NewBroker()
	}

	return &Server{Store: s, Broker: broker, Cache: c, Cfg: cfg}, nil
}
