package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"jetgrind/internal/domain"
)

// itemsKey holds the JSON-encoded item list.
var itemsKey = []byte("jetgrind.todos")

// BadgerRepository implements ListRepository using BadgerDB. The whole list
// is stored as one JSON value and overwritten on every save.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository creates and initializes a new BadgerDB repository.
// It opens the database at the specified path.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.Info("BadgerDB opened successfully at path: ", dbPath)

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

// LoadAll reads the stored item list. A missing key yields an empty list.
func (r *BadgerRepository) LoadAll(ctx context.Context) ([]domain.Item, error) {
	items := []domain.Item{}

	err := r.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get(itemsKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return entry.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &items); err != nil {
				return fmt.Errorf("failed to unmarshal items: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to load items from BadgerDB")
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	r.log.WithField("item_count", len(items)).Debug("Items loaded")
	return items, nil
}

// SaveAll overwrites the stored item list.
func (r *BadgerRepository) SaveAll(ctx context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		r.log.WithError(err).Error("Failed to marshal items to JSON")
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(itemsKey, data))
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to save items to BadgerDB")
		return fmt.Errorf("failed to save items: %w", err)
	}

	r.log.WithField("item_count", len(items)).Debug("Items saved")
	return nil
}

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
