package spec

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/logger"
	"github.com/teranos/specgraph/spec/cachestore"
	"gopkg.in/yaml.v3"
)

func (r *Repository) load() error {
	cacheDir, err := filepath.Abs(r.cfg.CacheDirectory)
	if err != nil {
		return errors.Wrapf(err, "resolve cache directory %s", r.cfg.CacheDirectory)
	}
	for _, root := range r.cfg.Paths {
		base, err := filepath.Abs(root)
		if err != nil {
			return errors.Wrapf(err, "resolve root %s", root)
		}
		if err := r.loadDir(base, base, cacheDir); err != nil {
			return err
		}
	}

	items := r.sortedItems()
	for _, item := range items {
		if err := r.linkParents(item); err != nil {
			return err
		}
	}
	for _, item := range items {
		r.linkChildren(item)
	}
	return r.resolveTypes(items)
}

func (r *Repository) resolveTypes(items []*Item) error {
	if r.cfg.TypeRootUID == "" {
		return nil
	}
	root, err := r.Item(r.cfg.TypeRootUID)
	if err != nil {
		return errors.Wrap(err, "type root")
	}
	t, err := gatherType(root, make(map[int]bool))
	if err != nil {
		return err
	}
	r.rootType = t
	for _, item := range items {
		if err := resolveType(t, item); err != nil {
			return err
		}
	}
	return nil
}

// loadDir loads the subdirectories of dir and then dir itself, either from
// its cache snapshot or by parsing its item files.
func (r *Repository) loadDir(base, dir, cacheDir string) error {
	checked := time.Now()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WrapMarkf(err, errors.ErrLoad, "cannot read directory '%s'", dir)
	}
	key := cacheKey(cacheDir, dir)
	log := r.logger.With(logger.FieldDirectory, dir, logger.FieldCacheKey, key)

	stamp, cached, err := r.store.Stat(key)
	if err != nil {
		log.Warnw("Cannot stat cache snapshot, rebuilding", logger.FieldError, err)
		cached = false
	}
	var sources sourceTimes
	sources.observe(dir, stamp)

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		if r.excluded(base, full) {
			continue
		}
		if entry.IsDir() {
			if full == cacheDir {
				continue
			}
			if err := r.loadDir(base, full, cacheDir); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(name, r.cfg.Extension) {
			continue
		}
		files = append(files, full)
		sources.observe(full, stamp)
	}
	stale := !cached || sources.changed

	var batch cachestore.Batch
	if stale {
		batch = make(cachestore.Batch, len(files))
		for _, file := range files {
			uid := identifier(base, file, r.cfg.Extension)
			data, err := loadItemFile(file, uid)
			if err != nil {
				return err
			}
			batch[uid] = data
		}
		if err := r.store.Write(key, sources.stamp(checked), batch); err != nil {
			return errors.Wrapf(err, "write cache snapshot for %s", dir)
		}
		r.updates++
		log.Debugw("Updated cache snapshot", logger.FieldItems, len(batch))
	} else {
		batch, err = r.store.Read(key)
		if err != nil {
			if !errors.Is(err, errors.ErrCorruptCache) {
				err = errors.Mark(err, errors.ErrCorruptCache)
			}
			return errors.WithHintf(errors.Wrapf(err, "read cache snapshot for %s", dir),
				"remove the cache directory %s and load again", r.cfg.CacheDirectory)
		}
		log.Debugw("Loaded cache snapshot", logger.FieldItems, len(batch))
	}

	uids := make([]string, 0, len(batch))
	for uid := range batch {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	for _, uid := range uids {
		if _, err := r.addItem(uid, normalizeRecord(batch[uid])); err != nil {
			return err
		}
	}
	return nil
}

// racyWindow bounds how far filesystem modification times may lag the wall
// clock. Sources modified within it of a check may still change without a
// newer modification time.
const racyWindow = time.Second

// sourceTimes collects the modification times of a directory and its item
// files.
type sourceTimes struct {
	newest  time.Time
	changed bool
}

// observe records the modification time of path and whether it is not
// covered by the snapshot stamp. A path that cannot be stat'ed counts as
// changed.
func (s *sourceTimes) observe(path string, stamp time.Time) {
	info, err := os.Stat(path)
	if err != nil {
		s.changed = true
		return
	}
	mtime := info.ModTime()
	if mtime.After(s.newest) {
		s.newest = mtime
	}
	if mtime.After(stamp) {
		s.changed = true
	}
}

// stamp returns the stamp of a snapshot parsed from sources that were
// checked at the given time: the newest modification time, or the zero
// Unix time when that is too recent to tell a later edit apart from the
// parsed state.
func (s *sourceTimes) stamp(checked time.Time) time.Time {
	if !s.newest.Before(checked.Add(-racyWindow)) {
		return time.Unix(0, 0)
	}
	return s.newest
}

func (r *Repository) excluded(base, full string) bool {
	if len(r.cfg.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(base, full)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range r.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// loadItemFile decodes one item file and adds the reserved attributes.
func loadItemFile(path, uid string) (Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapMarkf(err, errors.ErrLoad, "cannot read specification item file '%s'", path)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errors.WrapMarkf(err, errors.ErrLoad, "YAML error while loading specification item file '%s'", path)
	}
	if data == nil {
		return nil, errors.Markf(errors.ErrLoad, "specification item file '%s' contains no mapping", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapMarkf(err, errors.ErrLoad, "resolve %s", path)
	}
	record := normalizeRecord(data)
	record[KeyFile] = abs
	record[KeyUID] = uid
	return record, nil
}

// identifier derives the item identifier from the file path relative to the
// root: "/" + relative path without extension.
func identifier(base, file, ext string) string {
	rel, err := filepath.Rel(base, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	return "/" + strings.TrimSuffix(filepath.ToSlash(rel), ext)
}

// cacheKey derives the snapshot key of dir: its absolute path without the
// prefix it shares with the cache directory.
func cacheKey(cacheDir, dir string) string {
	common := commonPrefix(cacheDir, dir)
	key := strings.Trim(filepath.ToSlash(strings.TrimPrefix(dir, common)), "/")
	if key == "" {
		return "."
	}
	return key
}

// commonPrefix returns the longest common path of a and b.
func commonPrefix(a, b string) string {
	as := strings.Split(a, string(filepath.Separator))
	bs := strings.Split(b, string(filepath.Separator))
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	return strings.Join(as[:n], string(filepath.Separator))
}
