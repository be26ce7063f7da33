// Package file persists the cart as a versioned JSON snapshot on local disk.
// It is the storefront's equivalent of the browser's key-value store: one
// value under one well-known path, loaded once at startup and rewritten after
// every mutation.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/fornero/pizzeria-storefront/internal/cart"
)

// SchemaVersion tags the on-disk snapshot. Snapshots with a different or
// missing version are treated as corrupt and discarded on load.
const SchemaVersion = 1

// CartStorage implements cart.Storage on a single file.
//
// Load fails soft: a missing file, unreadable JSON, or a version mismatch all
// yield an empty cart and a diagnostic log entry. A corrupted snapshot must
// never keep the storefront from starting.
type CartStorage struct {
	path string
	lg   *zap.Logger
}

var _ cart.Storage = (*CartStorage)(nil)

// NewCartStorage creates a CartStorage writing to path. Parent directories
// are created on the first save.
func NewCartStorage(path string, lg *zap.Logger) *CartStorage {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &CartStorage{path: path, lg: lg}
}

// Load reads and decodes the snapshot. An absent file yields an empty list.
// Decode failures and version mismatches are logged and downgraded to an
// empty list rather than returned, making the soft-fail policy deterministic.
func (s *CartStorage) Load(_ context.Context) ([]cart.LineItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cart snapshot")
	}

	items, err := decodeSnapshot(data)
	if err != nil {
		s.lg.Warn("discarding corrupt cart snapshot",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, nil
	}
	return items, nil
}

// Save encodes the full item list and atomically replaces the snapshot file.
// The temp-file-plus-rename dance ensures a reader never observes a torn
// write, even though no cross-process locking is attempted.
func (s *CartStorage) Save(_ context.Context, items []cart.LineItem) error {
	data := encodeSnapshot(items)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create cart directory")
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "close snapshot")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}
