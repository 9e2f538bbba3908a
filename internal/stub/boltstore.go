package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const requestsBucket = "payment_requests"

// BoltStore persists records in a single-file embedded database, so the stub
// survives restarts without an external database process.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file and ensures the requests
// bucket exists.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(requestsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(requestsBucket)).Put([]byte(rec.ID), raw)
	})
}

func (s *BoltStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(requestsBucket)).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		rec = &Record{}
		return json.Unmarshal(raw, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *BoltStore) ListByCreator(ctx context.Context, userID string) ([]*Record, error) {
	return s.scan(func(rec *Record) bool { return rec.CreatedBy == userID })
}

func (s *BoltStore) ListByContributor(ctx context.Context, userID string) ([]*Record, error) {
	return s.scan(func(rec *Record) bool { return hasContribution(rec, userID) })
}

// scan walks the whole bucket. Fine for a dev fixture's data volumes.
func (s *BoltStore) scan(match func(*Record) bool) ([]*Record, error) {
	var out []*Record
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(requestsBucket)).ForEach(func(_, raw []byte) error {
			rec := &Record{}
			if err := json.Unmarshal(raw, rec); err != nil {
				return err
			}
			if match(rec) {
				out = append(out, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
