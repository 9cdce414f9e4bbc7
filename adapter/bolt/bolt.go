// Package bolt lends the key/value pairs of a bolt bucket.
//
// Keys and values point into the memory map of the database.
// They stay readable while the transaction is open,
// but an Entry is only lent until the next Next call, like any other lending item.
package bolt

import (
	"bytes"

	"github.com/boltdb/bolt"
	"go.llib.dev/frameless/pkg/errorkit"

	"go.llib.dev/lendstd/pkg/lendkit"
)

const ErrBucketNotFound errorkit.Error = "bolt: bucket not found"

var _ lendkit.Iterator[Entry] = (*Cursor)(nil)

// Entry is a key/value pair, Value is nil when the key names a nested bucket.
type Entry struct {
	Key   []byte
	Value []byte
}

// Cursor walks a bucket in key order.
type Cursor struct {
	cursor     *bolt.Cursor
	prefix     []byte
	tx         *bolt.Tx
	positioned bool
	done       bool
}

// New walks b within the transaction b belongs to. The caller owns the transaction.
func New(b *bolt.Bucket) *Cursor {
	return &Cursor{cursor: b.Cursor()}
}

// Prefix walks the keys of b that start with prefix.
func Prefix(b *bolt.Bucket, prefix []byte) *Cursor {
	return &Cursor{cursor: b.Cursor(), prefix: prefix}
}

// Open starts a read only transaction on db and walks the named bucket.
// Close ends the transaction.
func Open(db *bolt.DB, bucket []byte) (*Cursor, error) {
	tx, err := db.Begin(false)
	if err != nil {
		return nil, err
	}
	b := tx.Bucket(bucket)
	if b == nil {
		return nil, errorkit.Merge(ErrBucketNotFound.F("%q", bucket), tx.Rollback())
	}
	c := New(b)
	c.tx = tx
	return c, nil
}

func (c *Cursor) Next() (Entry, bool) {
	if c.done {
		return Entry{}, false
	}
	var k, v []byte
	switch {
	case c.positioned:
		k, v = c.cursor.Next()
	case c.prefix != nil:
		k, v = c.cursor.Seek(c.prefix)
	default:
		k, v = c.cursor.First()
	}
	c.positioned = true
	if k == nil || !bytes.HasPrefix(k, c.prefix) {
		c.done = true
		return Entry{}, false
	}
	return Entry{Key: k, Value: v}, true
}

func (c *Cursor) Close() error {
	c.done = true
	if c.tx == nil {
		return nil
	}
	tx := c.tx
	c.tx = nil
	return tx.Rollback()
}
