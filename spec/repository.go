// Package spec loads specification items from directory trees into an
// in-memory repository. Items are YAML mappings; links between them form a
// graph with role-labelled edges that is navigable in both directions.
//
// Loading is cached per directory in a cachestore.Store so that unchanged
// directories are not re-parsed.
package spec

import (
	"slices"
	"strings"
	"time"

	"github.com/teranos/specgraph/errors"
	"github.com/teranos/specgraph/logger"
	"github.com/teranos/specgraph/spec/cachestore"
	"go.uber.org/zap"
)

// DefaultExtension is the item file suffix.
const DefaultExtension = ".yml"

// Config controls where and how items are loaded.
type Config struct {
	// Paths are the root directories. Identifiers are relative to the root
	// an item was found under.
	Paths []string
	// CacheDirectory is skipped while walking the roots and determines the
	// cache keys.
	CacheDirectory string
	// TypeRootUID names the item whose spec-refinement children define the
	// type hierarchy. Empty disables type resolution.
	TypeRootUID string
	// Extension is the item file suffix, DefaultExtension if empty.
	Extension string
	// Exclude holds doublestar patterns matched against root-relative paths.
	Exclude []string
}

// Repository is the loaded item set.
type Repository struct {
	cfg    Config
	store  cachestore.Store
	logger *zap.SugaredLogger

	items    []*Item
	index    map[string]int
	topLevel map[int]struct{}
	edges    []edge
	bySource [][]int
	byTarget [][]int
	rootType *specType
	updates  int
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewEmpty returns a repository without items.
func NewEmpty() *Repository {
	return &Repository{
		index:    make(map[string]int),
		topLevel: make(map[int]struct{}),
		logger:   logger.ComponentLogger("spec"),
	}
}

// New loads all items below cfg.Paths. A nil store selects a file store in
// cfg.CacheDirectory.
func New(cfg Config, store cachestore.Store, opts ...Option) (*Repository, error) {
	r := NewEmpty()
	for _, opt := range opts {
		opt(r)
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if store == nil {
		store = cachestore.NewFileStore(cfg.CacheDirectory)
	}
	r.cfg = cfg
	r.store = store

	start := time.Now()
	if err := r.load(); err != nil {
		return nil, err
	}
	r.logger.Infow("Loaded specification items",
		logger.FieldItems, len(r.items),
		logger.FieldTopLevel, len(r.topLevel),
		logger.FieldCacheUpdates, r.updates,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return r, nil
}

// Config returns the configuration the repository was loaded with.
func (r *Repository) Config() Config { return r.cfg }

// Item returns the item with the absolute identifier uid.
func (r *Repository) Item(uid string) (*Item, error) {
	if item, ok := r.Lookup(uid); ok {
		return item, nil
	}
	return nil, errors.Markf(errors.ErrNotFound, "no item with identifier '%s'", uid)
}

// Lookup returns the item with the absolute identifier uid.
func (r *Repository) Lookup(uid string) (*Item, bool) {
	idx, ok := r.index[uid]
	if !ok {
		return nil, false
	}
	return r.items[idx], true
}

// Len returns the number of items.
func (r *Repository) Len() int { return len(r.items) }

// Items returns all items ordered by identifier.
func (r *Repository) Items() []*Item {
	out := slices.Clone(r.items)
	sortItems(out)
	return out
}

// TopLevel returns the items without declared links, ordered by identifier.
func (r *Repository) TopLevel() []*Item {
	out := make([]*Item, 0, len(r.topLevel))
	for idx := range r.topLevel {
		out = append(out, r.items[idx])
	}
	sortItems(out)
	return out
}

// Updates reports whether any directory was re-parsed during the load.
func (r *Repository) Updates() bool { return r.updates > 0 }

// UpdateCount returns the number of directories re-parsed during the load.
func (r *Repository) UpdateCount() int { return r.updates }

// AddVolatileItem loads one item file outside the roots and links it into
// the graph. The item is never written to the cache. On failure the
// repository is left unchanged.
func (r *Repository) AddVolatileItem(path, uid string) (*Item, error) {
	data, err := loadItemFile(path, uid)
	if err != nil {
		return nil, err
	}
	edgeMark := len(r.edges)
	item, err := r.addItem(uid, data)
	if err != nil {
		return nil, err
	}
	if err := r.linkParents(item); err != nil {
		r.rollback(item, edgeMark)
		return nil, err
	}
	r.linkChildren(item)
	if r.rootType != nil {
		if err := resolveType(r.rootType, item); err != nil {
			r.rollback(item, edgeMark)
			return nil, err
		}
	}
	return item, nil
}

func (r *Repository) addItem(uid string, data Record) (*Item, error) {
	if prev, ok := r.index[uid]; ok {
		return nil, errors.Markf(errors.ErrDuplicate,
			"duplicate item identifier '%s' in '%s' and '%s'", uid, r.items[prev].File(), data[KeyFile])
	}
	item := &Item{repo: r, idx: len(r.items), uid: uid, data: data}
	r.items = append(r.items, item)
	r.bySource = append(r.bySource, nil)
	r.byTarget = append(r.byTarget, nil)
	r.index[uid] = item.idx
	if links, _ := data[KeyLinks].([]any); len(links) == 0 {
		r.topLevel[item.idx] = struct{}{}
	}
	return item, nil
}

// linkParents resolves the declared links of item into edges.
func (r *Repository) linkParents(item *Item) error {
	raw, ok := item.data[KeyLinks]
	if !ok || raw == nil {
		return nil
	}
	links, ok := raw.([]any)
	if !ok {
		return errors.Markf(errors.ErrLoad, "item '%s' in '%s': links must be a sequence", item.uid, item.File())
	}
	for n, l := range links {
		data, ok := l.(map[string]any)
		if !ok {
			return errors.Markf(errors.ErrLoad, "item '%s' in '%s': link %d is not a mapping", item.uid, item.File(), n)
		}
		target, ok := data[LinkKeyUID].(string)
		if !ok {
			return errors.Markf(errors.ErrLoad, "item '%s' in '%s': link %d has no uid", item.uid, item.File(), n)
		}
		parent, ok := r.index[item.ToAbsUID(target)]
		if !ok {
			return errors.Markf(errors.ErrNotFound, "item '%s' links to non-existing item '%s'", item.uid, target)
		}
		r.bySource[item.idx] = append(r.bySource[item.idx], len(r.edges))
		r.edges = append(r.edges, edge{from: item.idx, to: parent, data: data})
	}
	return nil
}

// linkChildren registers the edges of item with their parents.
func (r *Repository) linkChildren(item *Item) {
	for _, e := range r.bySource[item.idx] {
		to := r.edges[e].to
		r.byTarget[to] = append(r.byTarget[to], e)
	}
}

func (r *Repository) rollback(item *Item, edgeMark int) {
	for e := len(r.edges) - 1; e >= edgeMark; e-- {
		to := r.edges[e].to
		if n := len(r.byTarget[to]); n > 0 && r.byTarget[to][n-1] == e {
			r.byTarget[to] = r.byTarget[to][:n-1]
		}
	}
	r.edges = r.edges[:edgeMark]
	r.items = r.items[:item.idx]
	r.bySource = r.bySource[:item.idx]
	r.byTarget = r.byTarget[:item.idx]
	delete(r.index, item.uid)
	delete(r.topLevel, item.idx)
}

// sortedItems returns the arena ordered by identifier.
func (r *Repository) sortedItems() []*Item {
	return r.Items()
}

func sortItems(items []*Item) {
	slices.SortFunc(items, func(a, b *Item) int { return strings.Compare(a.uid, b.uid) })
}
