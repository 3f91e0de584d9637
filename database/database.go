package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	runsBucket   = []byte("runs")
	latestBucket = []byte("latest")
)

// Record is the persisted outcome of one stress scenario run.
type Record struct {
	RunID       string        `json:"run_id"`
	Scenario    string        `json:"scenario"`
	Primitive   string        `json:"primitive"`
	StartedAt   time.Time     `json:"started_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Operations  int64         `json:"operations"`
	Canceled    int64         `json:"canceled"`
	MaxObserved int64         `json:"max_observed"`
	Failure     string        `json:"failure,omitempty"`
}

func (r *Record) Passed() bool {
	return len(r.Failure) == 0
}

type Database bbolt.DB

func NewDatabase(path string) (*Database, error) {
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{runsBucket, latestBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return (*Database)(db), nil
}

func (s *Database) Close() error {
	return s.get().Close()
}

// PutRecord stores a run under its scenario and marks it as the scenario's
// latest run.
func (s *Database) PutRecord(rec *Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	return s.get().Update(func(tx *bbolt.Tx) error {
		key := runKey(rec.Scenario, rec.StartedAt, rec.RunID)
		if err := tx.Bucket(runsBucket).Put(key, value); err != nil {
			return err
		}
		return tx.Bucket(latestBucket).Put([]byte(rec.Scenario), key)
	})
}

// Records returns the runs of a scenario, oldest first. An empty scenario
// returns the runs of every scenario.
func (s *Database) Records(scenario string) ([]*Record, error) {
	var records []*Record

	prefix := []byte(nil)
	if len(scenario) != 0 {
		prefix = scenarioPrefix(scenario)
	}

	err := s.get().View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			rec := &Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("failed to decode record %q: %w", k, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// LatestRecord returns the most recently stored run of a scenario, or nil if
// it never ran.
func (s *Database) LatestRecord(scenario string) (*Record, error) {
	var rec *Record

	err := s.get().View(func(tx *bbolt.Tx) error {
		key := tx.Bucket(latestBucket).Get([]byte(scenario))
		if key == nil {
			return nil
		}

		v := tx.Bucket(runsBucket).Get(key)
		if v == nil {
			return nil
		}

		rec = &Record{}
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *Database) get() *bbolt.DB {
	return (*bbolt.DB)(s)
}

func scenarioPrefix(scenario string) []byte {
	return []byte(scenario + "\x00")
}

// runKey sorts runs by scenario, then chronologically.
func runKey(scenario string, startedAt time.Time, runID string) []byte {
	return []byte(fmt.Sprintf("%s\x00%020d\x00%s", scenario, startedAt.UnixNano(), runID))
}
