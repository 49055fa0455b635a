package cachestore

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/specgraph/db"
	"github.com/teranos/specgraph/errors"
)

// SQLiteStore keeps snapshots in the spec_snapshots table.
type SQLiteStore struct {
	conn   *sql.DB
	ownsDB bool
}

// OpenSQLiteStore opens (and migrates) the database at path.
func OpenSQLiteStore(path string, logger *zap.SugaredLogger) (*SQLiteStore, error) {
	conn, err := db.OpenWithMigrations(path, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite cache")
	}
	if logger != nil {
		if version, err := db.SchemaVersion(conn); err == nil {
			logger.Debugw("Opened sqlite cache", "path", path, "schema_version", version)
		}
	}
	return &SQLiteStore{conn: conn, ownsDB: true}, nil
}

// NewSQLiteStore uses an already migrated connection. Close leaves it open.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{conn: conn}
}

func (s *SQLiteStore) Stat(key string) (time.Time, bool, error) {
	var nanos int64
	err := s.conn.QueryRow("SELECT updated_at FROM spec_snapshots WHERE dir_key = ?", key).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, s.wrap(err, "stat snapshot %s", key)
	}
	return time.Unix(0, nanos), true, nil
}

func (s *SQLiteStore) Read(key string) (Batch, error) {
	var payload []byte
	err := s.conn.QueryRow("SELECT payload FROM spec_snapshots WHERE dir_key = ?", key).Scan(&payload)
	if err != nil {
		return nil, s.wrap(err, "read snapshot %s", key)
	}
	return Decode(payload)
}

func (s *SQLiteStore) Write(key string, stamp time.Time, batch Batch) error {
	payload, err := Encode(batch)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec(`INSERT INTO spec_snapshots (dir_key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(dir_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, stamp.UnixNano())
	if err != nil {
		return s.wrap(err, "write snapshot %s", key)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.conn.Close()
}

func (s *SQLiteStore) wrap(err error, format string, args ...interface{}) error {
	return errors.Wrapf(db.Classify(err), format, args...)
}
