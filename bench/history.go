package bench

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketResults = []byte("results_by_set")

// History keeps past results keyed by backend, parameter set and time.
type History struct {
	db *bolt.DB
}

func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, fmt.Errorf("history path required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketResults); err != nil {
			return fmt.Errorf("create bucket %s: %w", string(bucketResults), err)
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func resultPrefix(backend, params string) []byte {
	out := make([]byte, 0, len(backend)+len(params)+2)
	out = append(out, backend...)
	out = append(out, 0)
	out = append(out, params...)
	return append(out, 0)
}

func resultKey(r Result) []byte {
	k := resultPrefix(r.Backend, r.Params)
	return binary.BigEndian.AppendUint64(k, uint64(r.Time.UnixNano()))
}

// Put stores r. Results with the same backend, set and time overwrite.
func (h *History) Put(r Result) error {
	v, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return h.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResults).Put(resultKey(r), v)
	})
}

// Previous returns the newest stored result for backend and params, or nil
// when there is none.
func (h *History) Previous(backend, params string) (*Result, error) {
	prefix := resultPrefix(backend, params)
	var out *Result
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		end := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
		k, v := c.Seek(end)
		if k == nil {
			k, v = c.Last()
		} else if !bytes.Equal(k, end) {
			k, v = c.Prev()
		}
		if k == nil || !bytes.HasPrefix(k, prefix) {
			return nil
		}
		var r Result
		if err := json.Unmarshal(v, &r); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
		out = &r
		return nil
	})
	return out, err
}

// List returns all stored results for backend and params, oldest first.
func (h *History) List(backend, params string) ([]Result, error) {
	prefix := resultPrefix(backend, params)
	var out []Result
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketResults).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r Result
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode result: %w", err)
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}
