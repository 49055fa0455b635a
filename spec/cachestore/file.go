package cachestore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/teranos/specgraph/errors"
)

const snapshotFile = "spec.msgpack"

// FileStore keeps each snapshot in "<dir>/<key>/spec.msgpack". The stamp is
// kept as the file modification time.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key), snapshotFile)
}

func (s *FileStore) Stat(key string) (time.Time, bool, error) {
	info, err := os.Stat(s.path(key))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, errors.Wrapf(err, "stat snapshot %s", key)
	}
	return info.ModTime(), true, nil
}

func (s *FileStore) Read(key string) (Batch, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", key)
	}
	return Decode(data)
}

func (s *FileStore) Write(key string, stamp time.Time, batch Batch) error {
	data, err := Encode(batch)
	if err != nil {
		return err
	}
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "create snapshot directory for %s", key)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), snapshotFile+".*")
	if err != nil {
		return errors.Wrapf(err, "create snapshot %s", key)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write snapshot %s", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write snapshot %s", key)
	}
	if err := os.Chtimes(tmp.Name(), stamp, stamp); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "stamp snapshot %s", key)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "replace snapshot %s", key)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
