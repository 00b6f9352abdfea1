package repo

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	errx "github.com/aegis-support-poc/client/internal/core/error"
	logx "github.com/aegis-support-poc/client/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisCatalog reads the response pack JSON from a single Redis key. It is
// the networked variant of the catalog for fleets that push pack updates
// centrally instead of shipping them in the bundle. Same memoization contract
// as FileCatalog: one load per process until Reload.
type RedisCatalog struct {
	rdb redis.Cmdable
	key string

	mu      sync.Mutex
	pack    *model.ResponsePack
	loadErr error
	loaded  bool
}

func NewRedisCatalog(rdb redis.Cmdable, key string) *RedisCatalog {
	return &RedisCatalog{rdb: rdb, key: key}
}

func (c *RedisCatalog) Lookup(ctx context.Context, intent string) (*model.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.pack, c.loadErr = c.load(ctx)
		c.loaded = true
	}
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.pack.Lookup(intent), nil
}

// Reload drops the memoized pack; the next Lookup hits Redis again.
func (c *RedisCatalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pack = nil
	c.loadErr = nil
	c.loaded = false
	return nil
}

func (c *RedisCatalog) load(ctx context.Context) (*model.ResponsePack, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		logx.Warn().
			Str("component", "redis_catalog").
			Str("key", c.key).
			Err(err).
			Msg("response pack fetch failed")
		return nil, errx.WrapRedis(err)
	}

	var pack model.ResponsePack
	if err := json.Unmarshal(data, &pack); err != nil {
		logx.Warn().
			Str("component", "redis_catalog").
			Str("key", c.key).
			Err(err).
			Msg("response pack decode failed")
		return nil, errx.New(err, http.StatusInternalServerError, errx.CatalogErrorMessage)
	}

	logx.Debug().
		Str("component", "redis_catalog").
		Str("version", pack.Version).
		Int("entries", len(pack.Intents)).
		Msg("response pack loaded")
	return &pack, nil
}
