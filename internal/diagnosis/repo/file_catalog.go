// Package repo provides the response catalog implementations backing the
// on-device diagnosis path: a bundled JSON file and a Redis-distributed pack.
package repo

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	errx "github.com/aegis-support-poc/client/internal/core/error"
	logx "github.com/aegis-support-poc/client/pkg/logger"
)

// FileCatalog loads a response pack from a JSON file on first use and caches
// it for the process lifetime. A failed load is sticky: Lookup keeps
// returning the load error until Reload is called, so a broken bundle is not
// re-read on every query.
type FileCatalog struct {
	path string

	mu      sync.Mutex
	pack    *model.ResponsePack
	loadErr error
	loaded  bool
}

func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

func (c *FileCatalog) Lookup(ctx context.Context, intent string) (*model.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.pack, c.loadErr = c.load()
		c.loaded = true
	}
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return c.pack.Lookup(intent), nil
}

// Reload drops the memoized pack; the next Lookup reads the file again.
func (c *FileCatalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pack = nil
	c.loadErr = nil
	c.loaded = false
	return nil
}

func (c *FileCatalog) load() (*model.ResponsePack, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		logx.Warn().
			Str("component", "file_catalog").
			Str("path", c.path).
			Err(err).
			Msg("response pack read failed")
		return nil, errx.New(err, http.StatusNotFound, errx.CatalogErrorMessage)
	}

	var pack model.ResponsePack
	if err := json.Unmarshal(data, &pack); err != nil {
		logx.Warn().
			Str("component", "file_catalog").
			Str("path", c.path).
			Err(err).
			Msg("response pack decode failed")
		return nil, errx.New(err, http.StatusInternalServerError, errx.CatalogErrorMessage)
	}

	logx.Debug().
		Str("component", "file_catalog").
		Str("version", pack.Version).
		Int("entries", len(pack.Intents)).
		Msg("response pack loaded")
	return &pack, nil
}
