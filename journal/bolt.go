package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

var eventsBucket = []byte("events")

type boltJournal struct {
	db     *bolt.DB
	logger logrus.FieldLogger
}

// Open opens or creates the journal database at path.
func Open(path string, logger logrus.FieldLogger) (Journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: init %s: %w", path, err)
	}

	j := &boltJournal{db: db, logger: logger}
	j.logger.Infof("[journal] opened %s", path)
	return j, nil
}

func (j *boltJournal) Append(_ context.Context, ev domain.Event, at time.Time) (Entry, error) {
	var entry Entry
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)
		prev := ""
		if _, v := b.Cursor().Last(); v != nil {
			var last Entry
			if err := json.Unmarshal(v, &last); err != nil {
				return err
			}
			prev = last.Hash
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		entry, err = newEntry(seq, prev, ev, at)
		if err != nil {
			return err
		}
		v, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), v)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("journal: append %s: %w", ev.EventName(), err)
	}
	return entry, nil
}

func (j *boltJournal) List(_ context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) == limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries, nil
}

func (j *boltJournal) Verify(ctx context.Context) error {
	entries, err := j.List(ctx, 0)
	if err != nil {
		return err
	}
	return verifyChain(entries)
}

func (j *boltJournal) Close() error {
	return j.db.Close()
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}
