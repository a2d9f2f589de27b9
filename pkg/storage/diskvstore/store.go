package diskvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
)

const defaultCacheSize = 1024 * 1024

// Options configures the diskv layout store.
type Options struct {
	BasePath     string
	CacheSizeMax uint64
}

// Store persists each layout as one file under BasePath.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

var _ dashboard.LayoutStore = (*Store)(nil)

// New creates a diskv-backed store.
func New(opts Options) (*Store, error) {
	if opts.BasePath == "" {
		return nil, errors.New("diskvstore: base path is required")
	}
	if opts.CacheSizeMax == 0 {
		opts.CacheSizeMax = defaultCacheSize
	}
	if err := os.MkdirAll(opts.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("diskvstore: create base path: %w", err)
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          opts.BasePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      opts.CacheSizeMax,
		}),
		basePath: opts.BasePath,
	}, nil
}

// BasePath returns the directory layouts are written to.
func (s *Store) BasePath() string {
	return s.basePath
}

// Load reads the payload stored under key.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dashboard.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("diskvstore: read %s: %w", key, err)
	}
	return val, nil
}

// Save replaces the payload stored under key.
func (s *Store) Save(_ context.Context, key string, payload []byte) error {
	if err := s.d.Write(key, payload); err != nil {
		return fmt.Errorf("diskvstore: write %s: %w", key, err)
	}
	return nil
}

// Erase removes a stored layout. Missing keys are ignored.
func (s *Store) Erase(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// Keys lists the stored layout keys.
func (s *Store) Keys() []string {
	var out []string
	for key := range s.d.Keys(nil) {
		out = append(out, key)
	}
	return out
}

// Storage keys may carry user ids, so file names are base64url encoded.
func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{"layouts"},
		FileName: base64.RawURLEncoding.EncodeToString([]byte(key)),
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	raw, err := base64.RawURLEncoding.DecodeString(pathKey.FileName)
	if err != nil {
		return pathKey.FileName
	}
	return string(raw)
}
