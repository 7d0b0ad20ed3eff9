package cache

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketRecords = "cache_records" // key: big-endian sequence -> Record JSON

// Bolt is a Store backed by a bbolt file. Records are keyed by the bucket
// sequence, so cursor order is insertion order.
type Bolt struct {
	storage *bbolt.DB
}

// NewBolt opens (creating if needed) the bolt database at path.
func NewBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketRecords))
		return err
	}); err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("creating cache bucket: %w", err)
	}

	return &Bolt{storage: instance}, nil
}

// Insert appends a record under the next bucket sequence.
func (b *Bolt) Insert(_ context.Context, name string, body []byte) error {
	data, err := json.Marshal(Record{Name: name, Body: string(body), CreatedAt: now()})
	if err != nil {
		return fmt.Errorf("encoding cache record for '%s': %w", name, err)
	}
	return b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketRecords))
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating cache key: %w", err)
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, data)
	})
}

// Exists reports whether any record matches name exactly.
func (b *Bolt) Exists(ctx context.Context, name string) (bool, error) {
	_, ok, err := b.FirstMatch(ctx, name)
	return ok, err
}

// FirstMatch scans in insertion order and returns the first record for name.
func (b *Bolt) FirstMatch(_ context.Context, name string) ([]byte, bool, error) {
	var found []byte
	err := b.scan(func(rec Record) bool {
		if rec.Name == name {
			found = []byte(rec.Body)
			return false
		}
		return true
	})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

// Count returns the number of records for name.
func (b *Bolt) Count(_ context.Context, name string) (int, error) {
	n := 0
	err := b.scan(func(rec Record) bool {
		if rec.Name == name {
			n++
		}
		return true
	})
	return n, err
}

// scan visits records in key order until visit returns false.
func (b *Bolt) scan(visit func(Record) bool) error {
	return b.storage.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketRecords)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding cache record %x: %w", k, err)
			}
			if !visit(rec) {
				return nil
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.storage.Close()
}
