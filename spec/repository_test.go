package spec

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/spec/cachestore"
)

func TestLoad_IdentifiersAndLinks(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.yml":       "title: A\n",
		"sub/b.yml":   "title: B\nlinks:\n- role: requirement-refinement\n  uid: ../a\n",
		"sub/c.yml":   "title: C\nlinks: [{role: other, uid: /a}, {role: requirement-refinement, uid: b}]\n",
		"sub/note.md": "not an item\n",
	})

	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: filepath.Join(t.TempDir(), "cache")}, memoryStore(t))

	assert.Equal(t, []string{"/a", "/sub/b", "/sub/c"}, uids(repo.Items()))
	assert.Equal(t, []string{"/a"}, uids(repo.TopLevel()))
	assert.Equal(t, 3, repo.Len())

	a, err := repo.Item("/a")
	require.NoError(t, err)
	assert.Equal(t, "/a", a.Value(KeyUID))
	assert.Equal(t, filepath.Join(root, "a.yml"), a.File())
	assert.Equal(t, "spec:/a", a.Spec())

	b, _ := repo.Item("/sub/b")
	c, _ := repo.Item("/sub/c")
	assert.Equal(t, []string{"/a"}, collect(b.Parents()))
	assert.Equal(t, []string{"/sub/b", "/sub/c"}, collect(a.Children()))
	assert.Equal(t, []string{"/sub/b"}, collect(a.Children("requirement-refinement")))
	assert.Equal(t, []string{"/a", "/sub/b"}, collect(c.Parents()))
	assert.Equal(t, []string{"/sub/b"}, collect(c.Parents("requirement-refinement")))

	_, err = repo.Item("/missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLoad_ChildrenOrderedByIdentifier(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"p.yml":    "title: P\n",
		"z/z.yml":  "links: [{role: r, uid: /p}]\n",
		"a.yml":    "links: [{role: r, uid: p}]\n",
		"m/m.yml":  "links: [{role: r, uid: /p}]\n",
		"m/m2.yml": "links: [{role: x, uid: /p}]\n",
		"zz/a.yml": "links: [{role: r, uid: /p}]\n",
	})
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, memoryStore(t))

	p, err := repo.Item("/p")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/m/m", "/m/m2", "/z/z", "/zz/a"}, collect(p.Children()))

	child, err := p.ChildAt(3, "r")
	require.NoError(t, err)
	assert.Equal(t, "/zz/a", child.UID())

	_, err = p.ChildAt(4, "r")
	assert.True(t, errors.Is(err, errors.ErrOutOfRange))
	_, err = p.Parent()
	assert.True(t, errors.Is(err, errors.ErrOutOfRange))

	first, err := p.Child("x")
	require.NoError(t, err)
	assert.Equal(t, "/m/m2", first.UID())
}

func TestLoad_LinkDataIsShared(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"p.yml": "title: P\n",
		"c.yml": "links: [{role: r, uid: p, note: x}]\n",
	})
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, memoryStore(t))
	p, _ := repo.Item("/p")
	c, _ := repo.Item("/c")

	for link := range c.LinksToParents() {
		assert.Equal(t, "x", link.Get("note"))
		link.Set("note", "y")
	}
	for link := range p.LinksToChildren() {
		assert.Equal(t, c, link.Item())
		assert.Equal(t, "r", link.Role())
		assert.Equal(t, "y", link.Get("note"))
	}
}

func TestLoad_SelfLink(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"s.yml": "links: [{role: self, uid: .}]\n"})
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, memoryStore(t))

	s, _ := repo.Item("/s")
	assert.Equal(t, []string{"/s"}, collect(s.Parents()))
	assert.Equal(t, []string{"/s"}, collect(s.Children()))
	assert.Empty(t, repo.TopLevel())
}

func TestLoad_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.yml":       "title: A\ncount: 3\nratio: 0.5\nnested: {list: [1, two, {k: v}]}\n",
		"sub/b.yml":   "links: [{role: r, uid: ../a}]\n",
		"sub/x/c.yml": "enabled-by: [X, {not: Y}]\n",
	})
	settle(t, root)
	cfg := Config{Paths: []string{root}, CacheDirectory: t.TempDir()}
	store := memoryStore(t)

	first := loadRepo(t, cfg, store)
	assert.True(t, first.Updates())
	assert.Equal(t, 3, first.UpdateCount())

	second := loadRepo(t, cfg, store)
	assert.False(t, second.Updates())
	require.Equal(t, uids(first.Items()), uids(second.Items()))
	for _, item := range first.Items() {
		other, err := second.Item(item.UID())
		require.NoError(t, err)
		assert.Equal(t, item.Data(), other.Data(), item.UID())
	}
}

func TestLoad_IdempotentWithFileStore(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.yml": "title: A\ncount: 3\nnested: {list: [1, two]}\n" +
			"big: 18446744073709551615\nwhen: 2020-01-02T03:04:05+02:00\n",
		"sub/b.yml": "links: [{role: r, uid: ../a}]\n",
	})
	settle(t, root)
	cfg := Config{Paths: []string{root}, CacheDirectory: filepath.Join(t.TempDir(), "cache")}

	first := loadRepo(t, cfg, nil)
	require.True(t, first.Updates())

	second := loadRepo(t, cfg, nil)
	assert.False(t, second.Updates())
	for _, item := range first.Items() {
		other, err := second.Item(item.UID())
		require.NoError(t, err)
		assert.Equal(t, item.Data(), other.Data(), item.UID())
	}

	a, err := second.Item("/a")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), a.Value("big"))
	when, ok := a.Value("when").(time.Time)
	require.True(t, ok, "timestamp decoded as %T", a.Value("when"))
	assert.True(t, time.Date(2020, 1, 2, 1, 4, 5, 0, time.UTC).Equal(when))
}

func TestLoad_StaleDirectoryOnly(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.yml":     "title: A\n",
		"sub/b.yml": "title: B\n",
		"oth/c.yml": "title: C\n",
	})
	settle(t, root)
	cfg := Config{Paths: []string{root}, CacheDirectory: t.TempDir()}
	store := memoryStore(t)
	loadRepo(t, cfg, store)

	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.yml"), []byte("title: B2\n"), 0644))

	repo := loadRepo(t, cfg, store)
	assert.Equal(t, 1, repo.UpdateCount(), "only the directory holding the touched file is re-parsed")
	item, _ := repo.Item("/sub/b")
	assert.Equal(t, "B2", item.Value("title"))
}

func TestLoad_NewFileMakesDirectoryStale(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n"})
	settle(t, root)
	cfg := Config{Paths: []string{root}, CacheDirectory: t.TempDir()}
	store := memoryStore(t)
	loadRepo(t, cfg, store)

	writeFiles(t, root, map[string]string{"n.yml": "title: N\n"})

	repo := loadRepo(t, cfg, store)
	assert.True(t, repo.Updates())
	assert.Equal(t, []string{"/a", "/n"}, uids(repo.Items()))
}

func TestLoad_RemovedFileMakesDirectoryStale(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n", "b.yml": "title: B\n"})
	settle(t, root)
	cfg := Config{Paths: []string{root}, CacheDirectory: t.TempDir()}
	store := memoryStore(t)
	loadRepo(t, cfg, store)

	require.NoError(t, os.Remove(filepath.Join(root, "b.yml")))

	repo := loadRepo(t, cfg, store)
	assert.Equal(t, []string{"/a"}, uids(repo.Items()))
}

// A load that fails on a dangling link must not leave a snapshot behind that
// hides the fix, however soon after the failed load the file is edited.
func TestLoad_FixedDanglingLinkIsReloaded(t *testing.T) {
	backends := []string{
		cachestore.BackendFile,
		cachestore.BackendSQLite,
		cachestore.BackendBadger,
		cachestore.BackendMemory,
	}
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			for round := 0; round < 5; round++ {
				root := t.TempDir()
				cache := t.TempDir()
				store, err := cachestore.Open(cachestore.Options{Backend: backend, Directory: cache})
				require.NoError(t, err)
				t.Cleanup(func() { store.Close() })
				cfg := Config{Paths: []string{root}, CacheDirectory: cache}

				writeFiles(t, root, map[string]string{
					"p.yml": "title: P\n",
					"b.yml": "links: [{role: r, uid: missing}]\n",
				})
				_, err = New(cfg, store)
				require.Error(t, err)
				assert.Contains(t, err.Error(), "item '/b' links to non-existing item 'missing'")

				writeFiles(t, root, map[string]string{"b.yml": "links: [{role: r, uid: p}]\n"})
				repo, err := New(cfg, store)
				require.NoError(t, err, "round %d", round)
				b, err := repo.Item("/b")
				require.NoError(t, err)
				assert.Equal(t, []string{"/p"}, collect(b.Parents()))
			}
		})
	}
}

func TestSourceTimes_Stamp(t *testing.T) {
	checked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	old := sourceTimes{newest: checked.Add(-time.Minute)}
	assert.Equal(t, checked.Add(-time.Minute), old.stamp(checked))

	recent := sourceTimes{newest: checked.Add(-racyWindow / 2)}
	assert.True(t, time.Unix(0, 0).Equal(recent.stamp(checked)), "recent sources get a stamp every file is newer than")

	future := sourceTimes{newest: checked.Add(time.Hour)}
	assert.True(t, time.Unix(0, 0).Equal(future.stamp(checked)))
}

func TestLoad_FreshlyWrittenTreeIsReparsed(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n"})
	cfg := Config{Paths: []string{root}, CacheDirectory: t.TempDir()}
	store := memoryStore(t)

	loadRepo(t, cfg, store)
	stamp, ok, err := store.Stat(cacheKey(cfg.CacheDirectory, root))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, time.Unix(0, 0).Equal(stamp))

	second := loadRepo(t, cfg, store)
	assert.True(t, second.Updates())
}

func TestLoad_SkipsCacheHiddenAndExcluded(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	writeFiles(t, root, map[string]string{
		"a.yml":           "title: A\n",
		"cache/junk.yml":  "title: not an item\n",
		".git/x.yml":      "title: hidden\n",
		".hidden.yml":     "title: hidden\n",
		"drafts/d.yml":    "title: draft\n",
		"sub/skip-me.yml": "title: skipped\n",
		"sub/keep.yml":    "title: kept\n",
	})
	repo := loadRepo(t, Config{
		Paths:          []string{root},
		CacheDirectory: cache,
		Exclude:        []string{"drafts", "**/skip-*.yml"},
	}, nil)
	assert.Equal(t, []string{"/a", "/sub/keep"}, uids(repo.Items()))
}

func TestLoad_CustomExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.yaml": "title: A\n",
		"b.yml":  "title: B\n",
	})
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir(), Extension: ".yaml"}, memoryStore(t))
	assert.Equal(t, []string{"/a"}, uids(repo.Items()))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		sentinel error
		contains string
	}{
		{
			name:     "unresolved link",
			files:    map[string]string{"b.yml": "links: [{role: r, uid: missing}]\n"},
			sentinel: errors.ErrNotFound,
			contains: "item '/b' links to non-existing item 'missing'",
		},
		{
			name:     "yaml syntax",
			files:    map[string]string{"bad.yml": "title: [unterminated\n"},
			sentinel: errors.ErrLoad,
			contains: "bad.yml",
		},
		{
			name:     "empty file",
			files:    map[string]string{"empty.yml": ""},
			sentinel: errors.ErrLoad,
			contains: "empty.yml",
		},
		{
			name:     "sequence document",
			files:    map[string]string{"seq.yml": "- a\n- b\n"},
			sentinel: errors.ErrLoad,
			contains: "seq.yml",
		},
		{
			name:     "links not a sequence",
			files:    map[string]string{"l.yml": "links: {uid: x}\n"},
			sentinel: errors.ErrLoad,
			contains: "links must be a sequence",
		},
		{
			name:     "link without uid",
			files:    map[string]string{"l.yml": "links: [{role: r}]\n"},
			sentinel: errors.ErrLoad,
			contains: "has no uid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFiles(t, root, tt.files)
			_, err := New(Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, memoryStore(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "%v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoad_NullLinksIsTopLevel(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\nlinks:\n"})
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, memoryStore(t))
	assert.Equal(t, []string{"/a"}, uids(repo.TopLevel()))
}

func TestLoad_DuplicateAcrossRoots(t *testing.T) {
	r1, r2 := t.TempDir(), t.TempDir()
	writeFiles(t, r1, map[string]string{"a.yml": "title: one\n"})
	writeFiles(t, r2, map[string]string{"a.yml": "title: two\n"})

	_, err := New(Config{Paths: []string{r1, r2}, CacheDirectory: t.TempDir()}, memoryStore(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicate))
}

func TestLoad_CorruptSnapshot(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(t.TempDir(), "cache")
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n"})
	settle(t, root)
	cfg := Config{Paths: []string{root}, CacheDirectory: cache}
	loadRepo(t, cfg, nil)

	var snapshots []string
	require.NoError(t, filepath.Walk(cache, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			snapshots = append(snapshots, path)
		}
		return err
	}))
	require.Len(t, snapshots, 1)
	require.NoError(t, os.WriteFile(snapshots[0], []byte{0xc1, 0xc1}, 0644))

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCorruptCache))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestLoad_MissingSnapshotIsRebuilt(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(t.TempDir(), "cache")
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n"})
	cfg := Config{Paths: []string{root}, CacheDirectory: cache}
	loadRepo(t, cfg, nil)

	require.NoError(t, os.RemoveAll(cache))
	repo := loadRepo(t, cfg, nil)
	assert.True(t, repo.Updates())
	assert.Equal(t, 1, repo.Len())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "proj/spec/req", cacheKey("/home/u/cache", "/home/u/proj/spec/req"))
	assert.Equal(t, ".", cacheKey("/home/u/spec/cache", "/home/u/spec"))
	assert.Equal(t, "req", cacheKey("/home/u/spec/cache", "/home/u/spec/req"))
	assert.Equal(t, ".", cacheKey("/a/b", "/a/b"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "/req/a", identifier("/root", "/root/req/a.yml", ".yml"))
	assert.Equal(t, "/a.yml", identifier("/root", "/root/a.yml.yaml", ".yaml"))
}

func TestAddVolatileItem(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n"})
	store := memoryStore(t)
	repo := loadRepo(t, Config{Paths: []string{root}, CacheDirectory: t.TempDir()}, store)
	cached := store.Len()

	extra := t.TempDir()
	writeFiles(t, extra, map[string]string{
		"v.yml":   "title: V\nlinks: [{role: r, uid: /a}]\n",
		"bad.yml": "links: [{role: r, uid: /nope}]\n",
	})

	v, err := repo.AddVolatileItem(filepath.Join(extra, "v.yml"), "/v")
	require.NoError(t, err)
	assert.Equal(t, "/v", v.UID())
	a, _ := repo.Item("/a")
	assert.Equal(t, []string{"/v"}, collect(a.Children()))
	assert.Equal(t, cached, store.Len(), "volatile items are not cached")

	_, err = repo.AddVolatileItem(filepath.Join(extra, "v.yml"), "/a")
	assert.True(t, errors.Is(err, errors.ErrDuplicate))

	_, err = repo.AddVolatileItem(filepath.Join(extra, "bad.yml"), "/bad")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 2, repo.Len())
	_, ok := repo.Lookup("/bad")
	assert.False(t, ok)
}

func TestNewEmpty(t *testing.T) {
	repo := NewEmpty()
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, repo.Items())
	assert.False(t, repo.Updates())
}

func TestNew_SQLiteBackend(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.yml": "title: A\n", "s/b.yml": "links: [{role: r, uid: /a}]\n"})
	store, err := cachestore.Open(cachestore.Options{Backend: cachestore.BackendSQLite, Directory: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	cfg := Config{Paths: []string{root}, CacheDirectory: t.TempDir()}
	first := loadRepo(t, cfg, store)
	assert.Equal(t, 2, first.UpdateCount())
	assert.Equal(t, 2, first.Len())
}
