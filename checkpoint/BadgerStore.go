package checkpoint

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/samuelfneumann/gorl/agent"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "agent/"

// BadgerStore stores agents in a badger database under the key
// agent/<name>
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a badger database at path. If path is empty the
// database is kept in memory. A nil log disables badger's logging.
func NewBadgerStore(path string, log logrus.FieldLogger) (*BadgerStore,
	error) {
	opts := badger.DefaultOptions(path).WithInMemory(path == "")

	// logrus entries satisfy badger.Logger
	if log != nil {
		opts = opts.WithLogger(log.WithField("component", "badger"))
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("newBadgerStore: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Save implements the Store interface
func (b *BadgerStore) Save(name string, a agent.Typed) error {
	data, err := Encode(a)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), data)
	})
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load implements the Store interface
func (b *BadgerStore) Load(name string, a agent.Typed) error {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("load: %q: %w", name, ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	if err := Decode(data, a); err != nil {
		return fmt.Errorf("load: %q: %w", name, err)
	}
	return nil
}

// Names returns the names of all stored agents in key order
func (b *BadgerStore) Names() ([]string, error) {
	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			names = append(names, string(key[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	return names, nil
}

// Close implements the Store interface
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
