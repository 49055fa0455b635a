package spec

import (
	"strings"

	"github.com/teranos/specgraph/errors"
)

// Link roles and attributes that define the type hierarchy.
const (
	RoleSpecRefinement = "spec-refinement"
	LinkKeySpecKey     = "spec-key"
	LinkKeySpecValue   = "spec-value"
)

// specType is one level of the refinement tree: the discriminating
// attribute and the subtype for each of its admitted values. A nil subtype
// is a leaf.
type specType struct {
	key         string
	refinements map[string]*specType
}

// gatherType builds the refinement tree below item from its spec-refinement
// child links.
func gatherType(item *Item, visiting map[int]bool) (*specType, error) {
	visiting[item.idx] = true
	defer delete(visiting, item.idx)

	var t *specType
	for link := range item.LinksToChildren() {
		if link.Role() != RoleSpecRefinement {
			continue
		}
		child := link.Item()
		key, ok := link.Get(LinkKeySpecKey).(string)
		if !ok {
			return nil, errors.Markf(errors.ErrInvalidType,
				"refinement link from '%s' to '%s' has no '%s'", child.uid, item.uid, LinkKeySpecKey)
		}
		value, ok := link.Get(LinkKeySpecValue).(string)
		if !ok {
			return nil, errors.Markf(errors.ErrInvalidType,
				"refinement link from '%s' to '%s' has no '%s'", child.uid, item.uid, LinkKeySpecValue)
		}
		if t == nil {
			t = &specType{key: key, refinements: make(map[string]*specType)}
		} else if t.key != key {
			return nil, errors.Markf(errors.ErrInvalidType,
				"refinements of '%s' use different keys '%s' and '%s'", item.uid, t.key, key)
		}
		if _, dup := t.refinements[value]; dup {
			return nil, errors.Markf(errors.ErrInvalidType,
				"'%s' has more than one refinement for %s '%s'", item.uid, key, value)
		}
		if visiting[child.idx] {
			return nil, errors.Markf(errors.ErrInvalidType,
				"refinement cycle through '%s' and '%s'", item.uid, child.uid)
		}
		sub, err := gatherType(child, visiting)
		if err != nil {
			return nil, err
		}
		t.refinements[value] = sub
	}
	return t, nil
}

// resolveType walks the refinement tree along the item attributes and
// stores the resulting type path in the item.
func resolveType(root *specType, item *Item) error {
	var names []string
	for t := root; t != nil; {
		raw, ok := item.data[t.key]
		if !ok {
			return errors.Markf(errors.ErrInvalidType,
				"item '%s' has no '%s' attribute to determine its type", item.uid, t.key)
		}
		value, ok := raw.(string)
		if !ok {
			return errors.Markf(errors.ErrInvalidType,
				"item '%s' has a non-string '%s' attribute", item.uid, t.key)
		}
		sub, ok := t.refinements[value]
		if !ok {
			return errors.Markf(errors.ErrInvalidType,
				"item '%s' has an invalid '%s' value '%s'", item.uid, t.key, value)
		}
		names = append(names, value)
		t = sub
	}
	item.data[KeyType] = strings.Join(names, "/")
	return nil
}
