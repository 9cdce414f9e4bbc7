package bolt_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lendbolt "go.llib.dev/lendstd/adapter/bolt"
	"go.llib.dev/lendstd/pkg/lendkit"
	"go.llib.dev/lendstd/pkg/lendkit/lendkitcontract"
)

var bucket = []byte("entries")

func newDB(t testing.TB, kvs ...string) *bolt.DB {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "lend.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		for i := 0; i+1 < len(kvs); i += 2 {
			if err := b.Put([]byte(kvs[i]), []byte(kvs[i+1])); err != nil {
				return err
			}
		}
		return nil
	}))
	return db
}

func TestOpen(t *testing.T) {
	db := newDB(t, "b", "2", "a", "1", "c", "3")

	c, err := lendbolt.Open(db, bucket)
	require.NoError(t, err)

	var got []string
	lendkit.ForEach(c, func(e lendbolt.Entry) {
		got = append(got, fmt.Sprintf("%s=%s", e.Key, e.Value))
	})
	assert.Equal(t, []string{"a=1", "b=2", "c=3"}, got)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	// the read transaction is gone, so a writer is not blocked
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte("d"), []byte("4"))
	}))
}

func TestOpen_missingBucket(t *testing.T) {
	db := newDB(t)

	_, err := lendbolt.Open(db, []byte("unknown"))
	assert.ErrorIs(t, err, lendbolt.ErrBucketNotFound)
}

func TestPrefix(t *testing.T) {
	db := newDB(t,
		"user/1", "alice",
		"user/2", "bob",
		"users", "x",
		"group/1", "admins")

	require.NoError(t, db.View(func(tx *bolt.Tx) error {
		c := lendbolt.Prefix(tx.Bucket(bucket), []byte("user/"))
		names := lendkit.Fold(c, []string{}, func(acc []string, e lendbolt.Entry) []string {
			return append(acc, string(e.Value))
		})
		assert.Equal(t, []string{"alice", "bob"}, names)
		return nil
	}))
}

func TestNew_nestedBucket(t *testing.T) {
	db := newDB(t, "a", "1")
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.Bucket(bucket).CreateBucket([]byte("nested"))
		return err
	}))

	require.NoError(t, db.View(func(tx *bolt.Tx) error {
		e, ok := lendkit.Find(lendbolt.New(tx.Bucket(bucket)), func(e lendbolt.Entry) bool {
			return string(e.Key) == "nested"
		})
		assert.True(t, ok)
		assert.Nil(t, e.Value)
		return nil
	}))
}

func TestCursor_contract(t *testing.T) {
	db := newDB(t, "a", "1", "b", "2", "c", "3")

	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[lendbolt.Entry] {
		c, err := lendbolt.Open(db, bucket)
		require.NoError(tb, err)
		return c
	}).Test(t)
}
