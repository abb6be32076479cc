package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	outcomeBucket  = "outcomes"
	metaBucket     = "meta"
	lastCleanupKey = "last_cleanup_unix"
	seqKeyBytes    = 8
)

// boltJournal implements a Journal backed by BoltDB. Keys are big-endian
// sequence numbers so a reverse cursor walk yields newest first. The time of
// the last expiry sweep lives in the meta bucket so the cadence holds across
// short-lived processes.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	sweep           func(now time.Time) error
}

// openBolt initializes a BoltDB-backed Journal.
func openBolt(path string, opts Options) (Journal, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	var lastCleanup int64
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(outcomeBucket)); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return err
		}
		lastCleanup = decodeUnix(meta.Get([]byte(lastCleanupKey)))
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	j := &boltJournal{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	j.sweep = j.deleteExpired
	j.lastCleanup.Store(lastCleanup)
	return j, nil
}

// Close closes the BoltDB journal.
func (b *boltJournal) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record appends e under the next sequence number, then sweeps expired
// entries when the cleanup interval has elapsed. A failed sweep is reported
// but the entry stays written.
func (b *boltJournal) Record(e Entry) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if e.CompletedAt.IsZero() {
		e.CompletedAt = now.UTC()
	}

	if err := b.append(e); err != nil {
		return err
	}
	if err := b.maybeCleanupExpired(now); err != nil {
		return fmt.Errorf("cleanup expired entries: %w", err)
	}
	return nil
}

func (b *boltJournal) append(e Entry) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		e.Seq = seq
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		return bucket.Put(encodeSeq(seq), value)
	})
}

// Recent returns up to limit unexpired entries, newest first.
func (b *boltJournal) Recent(limit int) ([]Entry, error) {
	if b == nil || b.db == nil || limit <= 0 {
		return nil, nil
	}

	cutoff := b.now().Add(-b.entryTTL)
	out := make([]Entry, 0, limit)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}
		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < limit; k, v = cursor.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode entry %d: %w", decodeSeq(k), err)
			}
			if !e.CompletedAt.After(cutoff) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired entries once per cleanup interval.
func (b *boltJournal) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	if err := b.sweep(now); err != nil {
		return err
	}
	b.lastCleanup.Store(now.Unix())
	return nil
}

// deleteExpired drops entries older than the TTL and stamps the sweep time
// in the same transaction.
func (b *boltJournal) deleteExpired(now time.Time) error {
	cutoff := now.Add(-b.entryTTL)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		meta := tx.Bucket([]byte(metaBucket))
		if bucket == nil || meta == nil {
			return fmt.Errorf("journal buckets missing")
		}

		var expired [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil || !e.CompletedAt.After(cutoff) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return meta.Put([]byte(lastCleanupKey), encodeUnix(now.Unix()))
	})
}

func encodeSeq(seq uint64) []byte {
	buf := make([]byte, seqKeyBytes)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

func decodeSeq(key []byte) uint64 {
	if len(key) != seqKeyBytes {
		return 0
	}
	return binary.BigEndian.Uint64(key)
}

func encodeUnix(sec int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(sec))
	return buf
}

func decodeUnix(raw []byte) int64 {
	if len(raw) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(raw))
}
