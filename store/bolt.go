package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	employeesBucket  = []byte("employees")
	attendanceBucket = []byte("attendance")
)

// BoltStore is the embedded backend: one file, an employees bucket
// keyed by employee id and an attendance bucket keyed by RecordKey
// with JSON-encoded records. Keys sort by employee then timestamp,
// which makes the per-employee scan a prefix seek.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database file at path and makes
// sure both buckets exist.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("error opening bolt database at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{employeesBucket, attendanceBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("error creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Employee(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	var profile EmployeeProfile
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(employeesBucket).Get([]byte(employeeID))
		if raw == nil {
			return ErrEmployeeNotFound
		}
		return json.Unmarshal(raw, &profile)
	})
	if err != nil {
		return EmployeeProfile{}, err
	}
	return profile, nil
}

func (s *BoltStore) PutEmployee(ctx context.Context, profile EmployeeProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("error encoding employee %s: %w", profile.EmployeeID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(employeesBucket).Put([]byte(profile.EmployeeID), raw)
	})
}

func (s *BoltStore) QueryAttendance(ctx context.Context, q Query) ([]AttendanceRecord, error) {
	var records []AttendanceRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(attendanceBucket).Cursor()

		var k, v []byte
		if q.EmployeeID != "" {
			prefix := []byte(q.EmployeeID + "|")
			for k, v = c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
				if err := collect(&records, v, q); err != nil {
					return err
				}
			}
			return nil
		}

		for k, v = c.First(); k != nil; k, v = c.Next() {
			if err := collect(&records, v, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func collect(records *[]AttendanceRecord, raw []byte, q Query) error {
	var record AttendanceRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("error decoding attendance record: %w", err)
	}
	if q.Matches(record) {
		*records = append(*records, record)
	}
	return nil
}

// PutAttendance writes the record under key. Writing the same key
// again replaces the identical event rather than duplicating it.
func (s *BoltStore) PutAttendance(ctx context.Context, key string, record AttendanceRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error encoding attendance record %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(attendanceBucket).Put([]byte(key), raw)
	})
}
