package ledger

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/stakepool-go/identity"
)

var (
	bucketMeta      = []byte("meta")
	bucketPositions = []byte("positions")
	bucketAccounts  = []byte("accounts")
	bucketEvents    = []byte("events")
	bucketRecords   = []byte("records")

	keyPool = []byte("pool")
)

// BoltStore persists ledger state in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketPositions, bucketAccounts, bucketEvents, bucketRecords} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// View runs fn in a read-only bbolt transaction.
func (s *BoltStore) View(fn func(tx Tx) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// Update runs fn in a read-write bbolt transaction; bbolt rolls back on error.
func (s *BoltStore) Update(fn func(tx Tx) error) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) Pool() (*Pool, error) {
	data := t.tx.Bucket(bucketMeta).Get(keyPool)
	if data == nil {
		return nil, ErrPoolNotFound
	}
	return DeserializePool(data)
}

func (t *boltTx) PutPool(p *Pool) error {
	if p == nil {
		return fmt.Errorf("%w: pool", ErrNilParam)
	}
	data, err := SerializePool(p)
	if err != nil {
		return err
	}
	return t.put(bucketMeta, keyPool, data)
}

func (t *boltTx) Position(owner identity.Address) (*StakePosition, bool, error) {
	data := t.tx.Bucket(bucketPositions).Get(owner[:])
	if data == nil {
		return nil, false, nil
	}
	pos, err := DeserializePosition(data)
	if err != nil {
		return nil, false, err
	}
	return pos, true, nil
}

func (t *boltTx) PutPosition(p *StakePosition) error {
	if p == nil {
		return fmt.Errorf("%w: position", ErrNilParam)
	}
	return t.put(bucketPositions, p.Owner[:], SerializePosition(p))
}

func (t *boltTx) Positions() ([]*StakePosition, error) {
	var out []*StakePosition
	err := t.tx.Bucket(bucketPositions).ForEach(func(_, v []byte) error {
		pos, err := DeserializePosition(v)
		if err != nil {
			return err
		}
		out = append(out, pos)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list positions: %w", err)
	}
	return out, nil
}

func (t *boltTx) Account(owner identity.Address) (*Account, error) {
	data := t.tx.Bucket(bucketAccounts).Get(owner[:])
	if data == nil {
		return &Account{Owner: owner}, nil
	}
	return DeserializeAccount(data)
}

func (t *boltTx) PutAccount(a *Account) error {
	if a == nil {
		return fmt.Errorf("%w: account", ErrNilParam)
	}
	return t.put(bucketAccounts, a.Owner[:], SerializeAccount(a))
}

func (t *boltTx) Accounts() ([]*Account, error) {
	var out []*Account
	err := t.tx.Bucket(bucketAccounts).ForEach(func(_, v []byte) error {
		a, err := DeserializeAccount(v)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list accounts: %w", err)
	}
	return out, nil
}

// NextMark uses the meta bucket sequence, which rolls back with the transaction.
func (t *boltTx) NextMark() (uint64, error) {
	if !t.tx.Writable() {
		return 0, ErrReadOnlyTx
	}
	mark, err := t.tx.Bucket(bucketMeta).NextSequence()
	if err != nil {
		return 0, fmt.Errorf("boltstore: next mark: %w", err)
	}
	return mark, nil
}

func (t *boltTx) AppendEvent(e *Event) error {
	if e == nil {
		return fmt.Errorf("%w: event", ErrNilParam)
	}
	data, err := encodeGob(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return t.put(bucketEvents, markKey(e.Mark), data)
}

func (t *boltTx) Events() ([]*Event, error) {
	var out []*Event
	err := t.tx.Bucket(bucketEvents).ForEach(func(_, v []byte) error {
		var e Event
		if err := decodeGob(v, &e); err != nil {
			return fmt.Errorf("boltstore: decode event: %w", err)
		}
		out = append(out, &e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *boltTx) AppendRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParam)
	}
	data, err := encodeGob(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return t.put(bucketRecords, recordKey(r.Mark, r.Index), data)
}

func (t *boltTx) Records() ([]*Record, error) {
	var out []*Record
	err := t.tx.Bucket(bucketRecords).ForEach(func(_, v []byte) error {
		var r Record
		if err := decodeGob(v, &r); err != nil {
			return fmt.Errorf("boltstore: decode record: %w", err)
		}
		out = append(out, &r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *boltTx) put(bucket, key, value []byte) error {
	if err := t.tx.Bucket(bucket).Put(key, value); err != nil {
		if errors.Is(err, bbolt.ErrTxNotWritable) {
			return ErrReadOnlyTx
		}
		return fmt.Errorf("boltstore: put %s: %w", bucket, err)
	}
	return nil
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
