package db

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/specgraph/errors"
)

// ErrDatabaseClosed marks operations on a closed connection, e.g. a cache
// store used after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// ErrDatabaseLocked marks writes that gave up after the busy timeout because
// another process holds the cache database.
var ErrDatabaseLocked = errors.New("database is locked")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed. The driver reports this only through its message.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsDatabaseLocked checks if an error is a SQLite busy or locked error.
func IsDatabaseLocked(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseLocked) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// Classify marks driver errors with ErrDatabaseClosed or ErrDatabaseLocked
// so callers can match them with errors.Is. Other errors pass unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsDatabaseLocked(err) && !errors.Is(err, ErrDatabaseLocked):
		return errors.WithHint(errors.Mark(err, ErrDatabaseLocked),
			"another specgraph process is using the cache; retry when it finishes")
	case IsDatabaseClosed(err) && !errors.Is(err, ErrDatabaseClosed):
		return errors.Mark(err, ErrDatabaseClosed)
	}
	return err
}
