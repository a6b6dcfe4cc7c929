// Package boltstore keeps the ledger in a local bbolt file. Expiring
// values carry their deadline in a sibling bucket and are reaped on read.
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/glyphforge/sphinx/lib/ledger"
)

func init() {
	ledger.Register("bolt", Factory{})
}

var (
	ErrNoPath = errors.New("boltstore.Config: no path defined")

	bucketData   = []byte("data")
	bucketExpiry = []byte("expiry")
)

type Config struct {
	Path string `json:"path"`
}

func (c Config) Valid() error {
	if c.Path == "" {
		return ErrNoPath
	}
	return nil
}

type Store struct {
	db *bbolt.DB
}

var _ ledger.Interface = (*Store)(nil)

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var result []byte
	expired := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketData).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
		}

		if deadline := tx.Bucket(bucketExpiry).Get([]byte(key)); deadline != nil {
			at := int64(binary.BigEndian.Uint64(deadline))
			if time.Now().UnixMilli() >= at {
				expired = true
				return fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
			}
		}

		result = bytes.Clone(data)
		return nil
	})

	if expired {
		_ = s.db.Update(func(tx *bbolt.Tx) error {
			if derr := tx.Bucket(bucketData).Delete([]byte(key)); derr != nil {
				return derr
			}
			return tx.Bucket(bucketExpiry).Delete([]byte(key))
		})
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, expiry time.Duration) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketData).Put([]byte(key), value); err != nil {
			return fmt.Errorf("can't write to bbolt: %w", err)
		}

		expiries := tx.Bucket(bucketExpiry)
		if expiry <= 0 {
			return expiries.Delete([]byte(key))
		}

		var deadline [8]byte
		binary.BigEndian.PutUint64(deadline[:], uint64(time.Now().Add(expiry).UnixMilli()))
		return expiries.Put([]byte(key), deadline[:])
	})
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketData).Get([]byte(key)) == nil {
			return fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
		}

		if err := tx.Bucket(bucketData).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(bucketExpiry).Delete([]byte(key))
	})
}

type Factory struct{}

func (Factory) Valid(data json.RawMessage) error {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}
	return cfg.Valid()
}

func (Factory) Build(ctx context.Context, data json.RawMessage) (ledger.Interface, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}
	if err := cfg.Valid(); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrBadConfig, err)
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore.Factory: can't open %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketData, bucketExpiry} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore.Factory: can't prepare buckets: %w", err)
	}

	return &Store{db: db}, nil
}
