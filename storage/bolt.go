package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	bolt "go.etcd.io/bbolt"
)

var progressBucket = []byte("progress")

// Bolt provides a BoltDB implementation of longdoc.ProgressStore.
// It records, per document split key, the ordinal of the next segment to dispatch.
type Bolt struct {
	DB *bolt.DB
}

// NewBolt opens the BoltDB file at path and ensures the progress bucket exists.
// It returns an initialized Bolt struct and any error encountered during database setup.
func NewBolt(path string) (Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return Bolt{}, fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(progressBucket)
		return err
	}); err != nil {
		db.Close()
		return Bolt{}, fmt.Errorf("failed to create progress bucket: %w", err)
	}

	return Bolt{DB: db}, nil
}

// Progress returns the next segment ordinal recorded for docID, or longdoc.ErrProgressNotFound.
func (b Bolt) Progress(docID string) (int, error) {
	var next int

	err := b.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(progressBucket)
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}

		value := bucket.Get([]byte(docID))
		if value == nil {
			return longdoc.ErrProgressNotFound
		}
		if len(value) != 8 {
			return fmt.Errorf("%w: %d bytes for %s", longdoc.ErrCorruptProgress, len(value), docID)
		}

		v := binary.BigEndian.Uint64(value)
		if v > math.MaxInt {
			return fmt.Errorf("%w: %d for %s", longdoc.ErrCorruptProgress, v, docID)
		}
		next = int(v)
		return nil
	})

	return next, err
}

// SaveProgress records next as the segment ordinal to resume docID from.
func (b Bolt) SaveProgress(docID string, next int) error {
	if next < 0 {
		return fmt.Errorf("%w: %d for %s", longdoc.ErrCorruptProgress, next, docID)
	}
	return b.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(progressBucket)
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}

		value := binary.BigEndian.AppendUint64(nil, uint64(next))
		if err := bucket.Put([]byte(docID), value); err != nil {
			return fmt.Errorf("failed to put progress: %w", err)
		}
		return nil
	})
}

// ResetProgress forgets the progress of docID.
func (b Bolt) ResetProgress(docID string) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(progressBucket)
		if bucket == nil {
			return fmt.Errorf("bucket not found")
		}
		return bucket.Delete([]byte(docID))
	})
}

// Close closes the underlying database.
func (b Bolt) Close() error {
	return b.DB.Close()
}
