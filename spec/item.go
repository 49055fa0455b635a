package spec

import (
	"iter"
	"path"
	"strings"

	"github.com/teranos/specgraph/enabledby"
	"github.com/teranos/specgraph/errors"
)

// Item is one specification item: a record plus its position in the link
// graph of the owning repository. Items are only valid while their
// repository is.
type Item struct {
	repo *Repository
	idx  int
	uid  string
	data Record
}

// NewItem returns an item that belongs to no repository. It has no links
// and its Map method fails for every identifier but ".".
func NewItem(uid string, data Record) *Item {
	if data == nil {
		data = Record{}
	}
	return &Item{idx: -1, uid: uid, data: data}
}

// UID returns the item identifier, e.g. "/req/foo".
func (i *Item) UID() string { return i.uid }

// Spec returns the identifier in cross-reference form.
func (i *Item) Spec() string { return "spec:" + i.uid }

// File returns the absolute path of the file the item was loaded from.
func (i *Item) File() string {
	s, _ := i.data[KeyFile].(string)
	return s
}

// Type returns the resolved type path, e.g. "requirement/functional". It is
// empty when no type root is configured.
func (i *Item) Type() string {
	s, _ := i.data[KeyType].(string)
	return s
}

// Data returns the underlying record. Mutations are visible to everyone
// holding the item.
func (i *Item) Data() Record { return i.data }

// Has reports whether the record contains key.
func (i *Item) Has(key string) bool {
	_, ok := i.data[key]
	return ok
}

// Value returns the attribute or nil.
func (i *Item) Value(key string) any { return i.data[key] }

// Get returns the attribute or def when it is absent.
func (i *Item) Get(key string, def any) any {
	if v, ok := i.data[key]; ok {
		return v
	}
	return def
}

// Set stores an attribute.
func (i *Item) Set(key string, value any) { i.data[key] = value }

// ToAbsUID resolves an identifier relative to the directory of this item.
// "." denotes the item itself.
func (i *Item) ToAbsUID(uid string) string {
	if uid == "." {
		return i.uid
	}
	if strings.HasPrefix(uid, "/") {
		return uid
	}
	return path.Clean(path.Join(path.Dir(i.uid), uid))
}

// Map returns the item designated by a possibly relative identifier.
func (i *Item) Map(uid string) (*Item, error) {
	if uid == "." {
		return i, nil
	}
	abs := i.ToAbsUID(uid)
	if i.repo == nil {
		return nil, errors.Markf(errors.ErrNotFound, "item '%s' cannot resolve '%s' outside a repository", i.uid, abs)
	}
	item, ok := i.repo.Lookup(abs)
	if !ok {
		return nil, errors.Markf(errors.ErrNotFound, "item '%s' refers to non-existing item '%s'", i.uid, abs)
	}
	return item, nil
}

// GetByKeyPath returns the attribute value designated by the key path, e.g.
// "links[0]/role". Relative key paths are joined to prefix.
func (i *Item) GetByKeyPath(keyPath, prefix string) (any, error) {
	return i.GetByNormalizedKeyPath(NormalizeKeyPath(keyPath, prefix), nil)
}

// GetByNormalizedKeyPath walks a normalized key path. Each segment is read by
// the transformer registered at that position of getters, or by
// DefaultGetValue.
func (i *Item) GetByNormalizedKeyPath(keyPath string, getters GetterMap) (any, error) {
	var value any = i.data
	trimmed := strings.Trim(keyPath, "/")
	if trimmed == "" {
		return value, nil
	}
	walked := "/"
	for _, segment := range strings.Split(trimmed, "/") {
		key, index, err := parseSegment(segment)
		if err != nil {
			return nil, errors.Wrapf(err, "item '%s'", i.uid)
		}
		get := DefaultGetValue
		var next GetterMap
		if node, ok := getters[key]; ok {
			if node.get != nil {
				get = node.get
			}
			next = node.children
		}
		value, err = get(GetValueContext{Item: i, Path: walked, Value: value, Key: key, Index: index})
		if err != nil {
			return nil, err
		}
		getters = next
		walked = path.Join(walked, segment)
	}
	return value, nil
}

// LinksToParents yields the links this item declares, in declaration order.
func (i *Item) LinksToParents() iter.Seq[*Link] {
	return func(yield func(*Link) bool) {
		if i.repo == nil {
			return
		}
		for _, e := range i.repo.bySource[i.idx] {
			edge := &i.repo.edges[e]
			if !yield(&Link{item: i.repo.items[edge.to], data: edge.data}) {
				return
			}
		}
	}
}

// LinksToChildren yields the reverse links of items that declare this item
// as a parent, ordered by child identifier.
func (i *Item) LinksToChildren() iter.Seq[*Link] {
	return func(yield func(*Link) bool) {
		if i.repo == nil {
			return
		}
		for _, e := range i.repo.byTarget[i.idx] {
			edge := &i.repo.edges[e]
			if !yield(&Link{item: i.repo.items[edge.from], data: edge.data}) {
				return
			}
		}
	}
}

// Parents yields parent items, optionally restricted to roles.
func (i *Item) Parents(roles ...string) iter.Seq[*Item] {
	return filterLinks(i.LinksToParents(), roles)
}

// Children yields child items, optionally restricted to roles.
func (i *Item) Children(roles ...string) iter.Seq[*Item] {
	return filterLinks(i.LinksToChildren(), roles)
}

// Parent returns the first parent with one of roles.
func (i *Item) Parent(roles ...string) (*Item, error) {
	return i.ParentAt(0, roles...)
}

// ParentAt returns the parent at index among those with one of roles.
func (i *Item) ParentAt(index int, roles ...string) (*Item, error) {
	if item, ok := nth(i.Parents(roles...), index); ok {
		return item, nil
	}
	return nil, errors.Markf(errors.ErrOutOfRange,
		"item '%s' has no parent at index %d for roles %v", i.uid, index, roles)
}

// Child returns the first child with one of roles.
func (i *Item) Child(roles ...string) (*Item, error) {
	return i.ChildAt(0, roles...)
}

// ChildAt returns the child at index among those with one of roles.
func (i *Item) ChildAt(index int, roles ...string) (*Item, error) {
	if item, ok := nth(i.Children(roles...), index); ok {
		return item, nil
	}
	return nil, errors.Markf(errors.ErrOutOfRange,
		"item '%s' has no child at index %d for roles %v", i.uid, index, roles)
}

// EnabledBy decodes the enabled-by attribute.
func (i *Item) EnabledBy() (enabledby.Expr, error) {
	raw, ok := i.data[KeyEnabledBy]
	if !ok {
		return nil, errors.Markf(errors.ErrExpression, "item '%s' has no enabled-by attribute", i.uid)
	}
	expr, err := enabledby.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "item '%s'", i.uid)
	}
	return expr, nil
}

// IsEnabled evaluates the enabled-by attribute against the active set.
func (i *Item) IsEnabled(active enabledby.Set) (bool, error) {
	expr, err := i.EnabledBy()
	if err != nil {
		return false, err
	}
	return enabledby.IsEnabled(active, expr), nil
}

func filterLinks(links iter.Seq[*Link], roles []string) iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for link := range links {
			if !hasRole(link.Role(), roles) {
				continue
			}
			if !yield(link.Item()) {
				return
			}
		}
	}
}

func hasRole(role string, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func nth(seq iter.Seq[*Item], index int) (*Item, bool) {
	if index < 0 {
		return nil, false
	}
	n := 0
	for item := range seq {
		if n == index {
			return item, true
		}
		n++
	}
	return nil, false
}
