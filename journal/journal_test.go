package journal

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func journals(t *testing.T) map[string]Journal {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	b, err := Open(filepath.Join(t.TempDir(), "journal.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return map[string]Journal{"memory": NewMemory(), "bolt": b}
}

func TestAppendChainsEntries(t *testing.T) {
	ctx := context.Background()
	at := time.Unix(1700000000, 0)
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			first, err := j.Append(ctx, domain.FeePctUpdated{Pct: 100}, at)
			require.NoError(t, err)
			second, err := j.Append(ctx, domain.JobApplied{JobID: 3, Agent: "ab"}, at.Add(time.Second))
			require.NoError(t, err)

			assert.Equal(t, uint64(1), first.Seq)
			assert.Empty(t, first.PrevHash)
			assert.Equal(t, first.Hash, second.PrevHash)
			assert.Equal(t, "JobApplied", second.Name)

			var payload domain.JobApplied
			require.NoError(t, json.Unmarshal(second.Payload, &payload))
			assert.Equal(t, domain.JobApplied{JobID: 3, Agent: "ab"}, payload)

			require.NoError(t, j.Verify(ctx))
		})
	}
}

func TestListReturnsMostRecentOldestFirst(t *testing.T) {
	ctx := context.Background()
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			for i := 1; i <= 5; i++ {
				_, err := j.Append(ctx, domain.CertificateDelisted{ID: uint64(i)}, time.Unix(int64(i), 0))
				require.NoError(t, err)
			}
			all, err := j.List(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 5)

			last, err := j.List(ctx, 2)
			require.NoError(t, err)
			require.Len(t, last, 2)
			assert.Equal(t, uint64(4), last[0].Seq)
			assert.Equal(t, uint64(5), last[1].Seq)
		})
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, logrus.New())
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := j.Append(ctx, domain.CertificateDelisted{ID: uint64(i)}, time.Unix(int64(i), 0))
		require.NoError(t, err)
	}
	require.NoError(t, j.Close())

	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)
		var e Entry
		if err := json.Unmarshal(b.Get(seqKey(2)), &e); err != nil {
			return err
		}
		e.Payload = json.RawMessage(`{"id":99}`)
		v, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(seqKey(2), v)
	}))
	require.NoError(t, db.Close())

	j, err = Open(path, logrus.New())
	require.NoError(t, err)
	defer j.Close()
	err = j.Verify(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2 hash mismatch")
}
