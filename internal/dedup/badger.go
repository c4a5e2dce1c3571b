package dedup

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// seenPrefix namespaces dedup keys so the store can hold other data later.
const seenPrefix = "seen:"

// BadgerOptions configures a Badger filter.
type BadgerOptions struct {
	// Dir is the database directory. It is created when missing.
	Dir string

	// InMemory keeps the store in memory only. Dir is ignored.
	InMemory bool
}

// Badger is a Filter backed by an embedded Badger database,
// so seen URLs survive restarts without an external server.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) the Badger database.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, errors.New("badger directory is required")
		}
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create badger directory: %w", err)
		}
		bopts = badger.DefaultOptions(opts.Dir)
	}

	// Badger logs compaction chatter to stderr by default.
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

// Seen reports whether url was stored.
func (b *Badger) Seen(_ context.Context, url string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(seenKey(url))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger lookup: %w", err)
	}
	return true, nil
}

// MarkSeen stores url.
func (b *Badger) MarkSeen(_ context.Context, url string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(seenKey(url), []byte{})
	})
	if err != nil {
		return fmt.Errorf("badger store: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

func seenKey(url string) []byte {
	return []byte(seenPrefix + url)
}
