package pebble_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lendpebble "go.llib.dev/lendstd/adapter/pebble"
	"go.llib.dev/lendstd/pkg/lendkit"
	"go.llib.dev/lendstd/pkg/lendkit/lendkitcontract"
)

func newMemDB(t testing.TB) *pebble.DB {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func seed(t testing.TB, db *pebble.DB, kvs ...string) {
	require.True(t, len(kvs)%2 == 0)
	for i := 0; i < len(kvs); i += 2 {
		require.NoError(t, db.Set([]byte(kvs[i]), []byte(kvs[i+1]), pebble.Sync))
	}
}

func TestIterator(t *testing.T) {
	db := newMemDB(t)
	seed(t, db, "b", "2", "a", "1", "c", "3")

	it, err := lendpebble.New(db, nil)
	require.NoError(t, err)
	defer it.Close()

	var got []string
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, fmt.Sprintf("%s=%s", e.Key, e.Value))
	}
	assert.Equal(t, []string{"a=1", "b=2", "c=3"}, got)
	assert.NoError(t, it.Err())

	_, ok := it.Next()
	assert.False(t, ok, "exhaustion is terminal")
}

func TestPrefix(t *testing.T) {
	db := newMemDB(t)
	seed(t, db,
		"user/1", "alice",
		"user/2", "bob",
		"users", "x",
		"group/1", "admins")

	it, err := lendpebble.Prefix(db, []byte("user/"))
	require.NoError(t, err)
	defer it.Close()

	keys := lendkit.Collect(lendkit.Map(it, func(e lendpebble.Entry) string {
		return string(bytes.Clone(e.Key))
	}))
	assert.Equal(t, []string{"user/1", "user/2"}, keys)
}

func TestPrefix_allHighBytes(t *testing.T) {
	db := newMemDB(t)
	seed(t, db, "\xff\xff", "a", "\xff\xff\x01", "b", "\xfe", "c")

	it, err := lendpebble.Prefix(db, []byte("\xff\xff"))
	require.NoError(t, err)
	defer it.Close()

	assert.Equal(t, 2, lendkit.Count(it))
}

func TestIterator_AdvanceBy(t *testing.T) {
	db := newMemDB(t)
	seed(t, db, "a", "1", "b", "2", "c", "3")

	it, err := lendpebble.New(db, nil)
	require.NoError(t, err)
	defer it.Close()

	require.NoError(t, lendkit.AdvanceBy(it, 2))
	e, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "c", string(e.Key))

	err = lendkit.AdvanceBy(it, 5)
	var adv *lendkit.AdvanceError
	require.ErrorAs(t, err, &adv)
	assert.Equal(t, 0, adv.Advanced)
	assert.ErrorIs(t, err, lendkit.ErrExhausted)
}

func TestIterator_Close(t *testing.T) {
	db := newMemDB(t)
	seed(t, db, "a", "1")

	it, err := lendpebble.New(db, nil)
	require.NoError(t, err)
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())

	_, ok := it.Next()
	assert.False(t, ok)
}

func TestIterator_contract(t *testing.T) {
	db := newMemDB(t)
	seed(t, db, "a", "1", "b", "2", "c", "3", "d", "4")

	lendkitcontract.Iterator(func(tb testing.TB) lendkit.Iterator[lendpebble.Entry] {
		it, err := lendpebble.New(db, nil)
		require.NoError(tb, err)
		return it
	}).Test(t)
}
