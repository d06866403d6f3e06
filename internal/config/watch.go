package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// CatalogWatcher polls the place catalog file and applies each new revision.
// Revisions are identified by content digest: a touched but unchanged file is
// not re-applied, and an edit is picked up even if the mtime goes backwards.
type CatalogWatcher struct {
	path     string
	interval time.Duration
	apply    func(*Catalog)
	logger   *zerolog.Logger

	digest  [sha256.Size]byte
	applied bool
}

func NewCatalogWatcher(path string, interval time.Duration, logger *zerolog.Logger, apply func(*Catalog)) *CatalogWatcher {
	if path == "" {
		path = "configs/places.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CatalogWatcher{path: path, interval: interval, apply: apply, logger: logger}
}

// Reload reads the catalog and applies it when its content differs from the
// last applied revision. It reports whether apply was called. On error the
// previous revision stays in effect.
func (w *CatalogWatcher) Reload() (bool, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return false, fmt.Errorf("read catalog: %w", err)
	}

	sum := sha256.Sum256(data)
	if w.applied && sum == w.digest {
		return false, nil
	}

	cat, err := ParseCatalog(data)
	if err != nil {
		return false, err
	}

	w.digest, w.applied = sum, true
	if w.apply != nil {
		w.apply(cat)
	}
	return true, nil
}

// Run polls until ctx is done. Call Reload once beforehand so startup fails
// fast on a broken catalog.
func (w *CatalogWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := w.Reload()
			if err != nil {
				w.logger.Error().Err(err).Str("path", w.path).Msg("catalog reload failed")
				continue
			}
			if changed {
				w.logger.Info().Str("path", w.path).Msg("catalog reloaded")
			}
		}
	}
}

// WatchCatalog performs the initial load and then keeps watching in the
// background until ctx is done.
func WatchCatalog(ctx context.Context, path string, interval time.Duration, logger *zerolog.Logger, onUpdate func(*Catalog)) error {
	w := NewCatalogWatcher(path, interval, logger, onUpdate)
	if _, err := w.Reload(); err != nil {
		return err
	}
	go w.Run(ctx)
	return nil
}
