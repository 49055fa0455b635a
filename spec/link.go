package spec

// edge is one declared link. data is the link mapping from the child record;
// both directions of the link share it.
type edge struct {
	from int
	to   int
	data map[string]any
}

// Link is one end of a link: the item on the far side together with the
// link attributes.
type Link struct {
	item *Item
	data map[string]any
}

// Item returns the item the link points to from the perspective of the
// iterating item.
func (l *Link) Item() *Item { return l.item }

// Role returns the link role or "".
func (l *Link) Role() string {
	s, _ := l.data[LinkKeyRole].(string)
	return s
}

// Get returns a link attribute or nil.
func (l *Link) Get(key string) any { return l.data[key] }

// Set stores a link attribute. The change is visible from both ends.
func (l *Link) Set(key string, value any) { l.data[key] = value }

// Data returns the link mapping.
func (l *Link) Data() map[string]any { return l.data }
