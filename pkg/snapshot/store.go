// Package snapshot persists encoded records in a pebble database, keyed by
// ksuid so that snapshots list in creation order.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"

	"github.com/cheetah-game-platform/realtime/pkg/wire"
)

var keyPrefix = []byte("snapshot/")

var (
	ErrNotFound = errors.New("snapshot not found")
	ErrCorrupt  = errors.New("snapshot value is corrupt")
)

// Snapshot is one stored record.
type Snapshot struct {
	ID        ksuid.KSUID `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Payload   []byte      `json:"-" yaml:"-"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
}

// Option configures a Store.
type Option func(*options)

type options struct {
	fs   vfs.FS
	sync bool
}

// WithFS opens the database on fs instead of the OS filesystem.
func WithFS(fs vfs.FS) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithSync makes every write wait for the WAL to reach disk.
func WithSync(sync bool) Option {
	return func(o *options) {
		o.sync = sync
	}
}

// Store keeps snapshots in pebble
type Store struct {
	db    *pebble.DB
	write *pebble.WriteOptions
}

// Open opens or creates the snapshot database at path
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	dbOpts := &pebble.Options{}
	if o.fs != nil {
		dbOpts.FS = o.fs
	}
	db, err := pebble.Open(path, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	write := pebble.NoSync
	if o.sync {
		write = pebble.Sync
	}
	return &Store{db: db, write: write}, nil
}

func key(id ksuid.KSUID) []byte {
	k := make([]byte, 0, len(keyPrefix)+len(ksuid.Nil))
	k = append(k, keyPrefix...)
	return append(k, id.Bytes()...)
}

// Put stores payload under a new id
func (s *Store) Put(name string, payload []byte) (ksuid.KSUID, error) {
	buf := wire.NewBuffer(wire.VarUint64Size(uint64(len(name))) + len(name) + len(payload))
	buf.PutVarUint64(uint64(len(name)))
	buf.PutFixed([]byte(name))
	buf.PutFixed(payload)

	id := ksuid.New()
	if err := s.db.Set(key(id), buf.Bytes(), s.write); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get returns the snapshot stored under id
func (s *Store) Get(id ksuid.KSUID) (*Snapshot, error) {
	data, closer, err := s.db.Get(key(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer closer.Close()

	return decodeValue(id, data)
}

func decodeValue(id ksuid.KSUID, data []byte) (*Snapshot, error) {
	buf := wire.FromBytes(data)
	n, err := buf.GetVarUint64()
	if err != nil || n > uint64(buf.Remaining()) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, id)
	}
	name, _ := buf.GetFixed(int(n))
	payload, _ := buf.GetFixed(buf.Remaining())

	// data belongs to pebble and is only valid until the closer runs.
	return &Snapshot{
		ID:        id,
		Name:      string(name),
		Payload:   bytes.Clone(payload),
		CreatedAt: id.Time(),
	}, nil
}

// Delete removes the snapshot stored under id
func (s *Store) Delete(id ksuid.KSUID) error {
	_, closer, err := s.db.Get(key(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	closer.Close()

	return s.db.Delete(key(id), s.write)
}

// List returns the ids of all snapshots in key order
func (s *Store) List() ([]ksuid.KSUID, error) {
	upper := bytes.Clone(keyPrefix)
	upper[len(upper)-1]++

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(keyPrefix):])
		if err != nil {
			_ = iter.Close()
			return nil, fmt.Errorf("%w: bad key %x", ErrCorrupt, iter.Key())
		}
		ids = append(ids, id)
	}
	return ids, iter.Close()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
