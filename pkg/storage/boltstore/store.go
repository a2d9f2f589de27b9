package boltstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
)

// DefaultBucket holds layout payloads keyed by storage key.
const DefaultBucket = "layouts"

// Options configures the bolt layout store.
type Options struct {
	Path    string
	Bucket  string
	Timeout time.Duration
}

// Store persists layouts in a single bolt bucket.
type Store struct {
	DB     *bolt.DB
	bucket []byte
}

var _ dashboard.LayoutStore = (*Store)(nil)

// Open opens (or creates) the database file and ensures the bucket exists.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("boltstore: path is required")
	}
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second
	}
	db, err := bolt.Open(opts.Path, 0600, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", opts.Path, err)
	}
	store := &Store{DB: db, bucket: []byte(opts.Bucket)}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(store.bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: ensure bucket: %w", err)
	}
	return store, nil
}

// Close the database and release the file lock.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Load reads the payload stored under key.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return nil
		}
		if value := bucket.Get([]byte(key)); value != nil {
			payload = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: read %s: %w", key, err)
	}
	if payload == nil {
		return nil, dashboard.ErrLayoutNotFound
	}
	return payload, nil
}

// Save replaces the payload stored under key.
func (s *Store) Save(_ context.Context, key string, payload []byte) error {
	err := s.DB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), payload)
	})
	if err != nil {
		return fmt.Errorf("boltstore: write %s: %w", key, err)
	}
	return nil
}

// Delete removes a stored layout.
func (s *Store) Delete(key string) error {
	return s.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
}

// Keys lists the stored layout keys in byte order.
func (s *Store) Keys() ([]string, error) {
	var out []string
	err := s.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}
