package spec

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/specgraph/spec/cachestore"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func memoryStore(t *testing.T) *cachestore.MemoryStore {
	t.Helper()
	s, err := cachestore.NewMemoryStore(64)
	require.NoError(t, err)
	return s
}

// settle backdates every file and directory below root, as if the tree had
// been written well before the next load.
func settle(t *testing.T, root string) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, past, past)
	}))
}

func loadRepo(t *testing.T, cfg Config, store cachestore.Store) *Repository {
	t.Helper()
	repo, err := New(cfg, store, WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, err)
	return repo
}

func uids(items []*Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.UID()
	}
	return out
}

func collect(seq func(func(*Item) bool)) []string {
	var out []string
	for item := range seq {
		out = append(out, item.UID())
	}
	return out
}
