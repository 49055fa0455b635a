package cachestore

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/teranos/specgraph/errors"
)

const (
	statPrefix = "stat:"
	dataPrefix = "data:"
)

// BadgerStore keeps each snapshot under two keys: "data:<key>" holds the
// payload and "stat:<key>" the stamp in Unix nanoseconds.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadgerStore opens a database in path, or in memory when inMemory is
// set.
func OpenBadgerStore(path string, inMemory bool, logger *zap.SugaredLogger) (*BadgerStore, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if path == "" {
			return nil, errors.New("path is required for persistent badger cache")
		}
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, errors.Wrapf(err, "create badger directory %s", path)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger cache")
	}
	return &BadgerStore{db: bdb}, nil
}

func (s *BadgerStore) Stat(key string) (time.Time, bool, error) {
	var stamp []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(statPrefix + key))
		if err != nil {
			return err
		}
		stamp, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrapf(err, "stat snapshot %s", key)
	}
	if len(stamp) != 8 {
		return time.Time{}, false, errors.Newf("snapshot time of %s has %d bytes", key, len(stamp))
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(stamp))), true, nil
}

func (s *BadgerStore) Read(key string) (Batch, error) {
	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dataPrefix + key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", key)
	}
	return Decode(payload)
}

func (s *BadgerStore) Write(key string, stamp time.Time, batch Batch) error {
	payload, err := Encode(batch)
	if err != nil {
		return err
	}
	nanos := make([]byte, 8)
	binary.BigEndian.PutUint64(nanos, uint64(stamp.UnixNano()))
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataPrefix+key), payload); err != nil {
			return err
		}
		return txn.Set([]byte(statPrefix+key), nanos)
	})
	if err != nil {
		return errors.Wrapf(err, "write snapshot %s", key)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
