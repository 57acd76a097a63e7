// Package kv wraps github.com/boltdb/bolt behind the narrow contract
// spec.md's C2 describes: a durable ordered byte-key -> byte-value map
// with atomic single-key writes and an explicit flush barrier. Each
// lumenchain namespace (blocks, utxos, wallets) opens its own Store over
// its own file and bucket; bolt itself is the real embedded KV engine,
// this wrapper only narrows its API to what the domain needs.
package kv

import (
	"lumenchain/errs"

	"github.com/boltdb/bolt"
)

// Store is a single bolt-backed bucket opened from its own file.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open opens (creating if necessary) the bolt file at path and ensures
// bucket exists within it.
func Open(path string, bucket string) (*Store, error) {
	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, errs.Storage("kv.Open", err)
	}
	s := &Store{db: db, bucket: []byte(bucket)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errs.Storage("kv.Open", err)
	}
	return s, nil
}

// Close releases the underlying bolt file handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errs.Storage("kv.Close", err)
	}
	return nil
}

// Get reads a single key. A missing key returns (nil, nil); callers that
// need "not found" semantics check for a nil result themselves.
func (s *Store) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(key)
		if v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Storage("kv.Get", err)
	}
	return val, nil
}

// Put writes a single key atomically.
func (s *Store) Put(key, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(key, value)
	})
	if err != nil {
		return errs.Storage("kv.Put", err)
	}
	return nil
}

// Delete removes a single key. Deleting an absent key is a no-op.
func (s *Store) Delete(key []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(key)
	})
	if err != nil {
		return errs.Storage("kv.Delete", err)
	}
	return nil
}

// ForEach walks every key/value pair in key order. fn must not retain the
// slices it's given past a single call.
func (s *Store) ForEach(fn func(key, value []byte) error) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(fn)
	})
	if err != nil {
		return errs.Storage("kv.ForEach", err)
	}
	return nil
}

// Reset wipes every key in the namespace, leaving an empty bucket behind.
// Used by chain creation and UTXO reindexing.
func (s *Store) Reset() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.bucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(s.bucket)
		return err
	})
	if err != nil {
		return errs.Storage("kv.Reset", err)
	}
	return nil
}

// Flush forces a durability barrier. bolt fsyncs on every committed
// Update, so a flush is a zero-op write transaction that waits for the
// commit to land; callers use it after a batch of mutations (genesis
// creation, wallet save-all) to make the barrier explicit in the code
// that needs it, per spec.md §5.
func (s *Store) Flush() error {
	err := s.db.Update(func(tx *bolt.Tx) error { return nil })
	if err != nil {
		return errs.Storage("kv.Flush", err)
	}
	return nil
}
