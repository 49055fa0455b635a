package spec

import (
	"strings"

	"github.com/teranos/specgraph/errors"
)

// GetValueContext is passed to a GetValue for one key path segment.
type GetValueContext struct {
	// Item owns the attribute being read.
	Item *Item
	// Path is the normalized key path walked so far, e.g. "/a/b[0]".
	Path string
	// Value is the container the segment is read from.
	Value any
	// Key is the segment name without subscript.
	Key string
	// Index is the segment subscript, or -1.
	Index int
}

// GetValue reads (and possibly rewrites) the value of one key path segment.
type GetValue func(ctx GetValueContext) (any, error)

type getterNode struct {
	get      GetValue
	children GetterMap
}

// GetterMap is one level of the getter trie, keyed by segment name.
type GetterMap map[string]*getterNode

// GetterRegistry maps (item type, key path) to value transformers. Lookup
// walks the trie one segment at a time, so different segments of a single
// path may be rewritten by different transformers.
type GetterRegistry struct {
	byType map[string]GetterMap
}

// NewGetterRegistry returns an empty registry.
func NewGetterRegistry() *GetterRegistry {
	return &GetterRegistry{byType: make(map[string]GetterMap)}
}

// Add registers get for a key of the form "type:/key/path". Intermediate
// segments keep the default lookup.
func (r *GetterRegistry) Add(typePathKey string, get GetValue) error {
	typeName, pathKey, ok := strings.Cut(typePathKey, ":")
	if !ok || strings.Contains(pathKey, ":") {
		return errors.Newf("getter key '%s' must have the form 'type:/key/path'", typePathKey)
	}
	keys := strings.Split(strings.Trim(pathKey, "/"), "/")
	m, ok := r.byType[typeName]
	if !ok {
		m = make(GetterMap)
		r.byType[typeName] = m
	}
	for _, key := range keys[:len(keys)-1] {
		node, ok := m[key]
		if !ok {
			node = &getterNode{children: make(GetterMap)}
			m[key] = node
		}
		m = node.children
	}
	last := keys[len(keys)-1]
	if node, ok := m[last]; ok {
		node.get = get
	} else {
		m[last] = &getterNode{get: get, children: make(GetterMap)}
	}
	return nil
}

// For returns the getter trie registered for an item type.
func (r *GetterRegistry) For(itemType string) GetterMap {
	if r == nil {
		return nil
	}
	return r.byType[itemType]
}

// DefaultGetValue reads Key from the mapping in Value and applies Index.
func DefaultGetValue(ctx GetValueContext) (any, error) {
	m, ok := ctx.Value.(map[string]any)
	if !ok {
		return nil, errors.Markf(errors.ErrNotFound,
			"item '%s': value at '%s' is not a mapping", ctx.Item.UID(), ctx.Path)
	}
	value, ok := m[ctx.Key]
	if !ok {
		return nil, errors.Markf(errors.ErrNotFound,
			"item '%s' has no attribute '%s' at '%s'", ctx.Item.UID(), ctx.Key, ctx.Path)
	}
	if ctx.Index < 0 {
		return value, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errors.Markf(errors.ErrNotFound,
			"item '%s': attribute '%s' at '%s' is not a sequence", ctx.Item.UID(), ctx.Key, ctx.Path)
	}
	if ctx.Index >= len(list) {
		return nil, errors.Markf(errors.ErrOutOfRange,
			"item '%s': index %d of '%s' at '%s' exceeds length %d", ctx.Item.UID(), ctx.Index, ctx.Key, ctx.Path, len(list))
	}
	return list[ctx.Index], nil
}
