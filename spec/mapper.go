package spec

import (
	"path"
	"regexp"
	"strings"

	"github.com/teranos/specgraph/errors"
)

// Pipe post-processes a mapped value, e.g. "${/a:title|upper}".
type Pipe func(value any) (any, error)

const identifierSyntax = `[a-zA-Z0-9._/-]+(?::[\][a-zA-Z0-9._/-]+)?(?:\|[a-zA-Z0-9_]+)*`

var (
	// "$$", "$identifier", "${...}" or a stray "$"
	placeholderPattern = regexp.MustCompile(`\$(?:(\$)|(` + identifierSyntax + `)|\{([^}]*)\}|)`)
	identifierPattern  = regexp.MustCompile(`^` + identifierSyntax + `$`)
)

// ItemMapper resolves identifiers of the form "uid:key/path|pipe" relative
// to a current item and substitutes "$identifier" and "${identifier}"
// placeholders in text. The unbraced form extends as far as the identifier
// syntax allows, so "${...}" is needed when identifier characters follow.
type ItemMapper struct {
	item      *Item
	recursive bool
	prefix    []string
	getters   *GetterRegistry
	pipes     map[string]Pipe
}

// NewItemMapper returns a mapper for item. A recursive mapper substitutes
// placeholders in mapped values as well.
func NewItemMapper(item *Item, recursive bool) *ItemMapper {
	return &ItemMapper{
		item:      item,
		recursive: recursive,
		prefix:    []string{""},
		getters:   NewGetterRegistry(),
		pipes:     make(map[string]Pipe),
	}
}

// Item returns the current item.
func (m *ItemMapper) Item() *Item { return m.item }

// SetItem changes the current item.
func (m *ItemMapper) SetItem(item *Item) { m.item = item }

// AddGetValue registers a value transformer, see GetterRegistry.Add.
func (m *ItemMapper) AddGetValue(typePathKey string, get GetValue) error {
	return m.getters.Add(typePathKey, get)
}

// AddPipe registers a named pipe.
func (m *ItemMapper) AddPipe(name string, pipe Pipe) { m.pipes[name] = pipe }

// PushPrefix makes key paths of "." identifiers relative to prefix.
func (m *ItemMapper) PushPrefix(prefix string) { m.prefix = append(m.prefix, prefix) }

// PopPrefix undoes the last PushPrefix.
func (m *ItemMapper) PopPrefix() {
	if len(m.prefix) > 1 {
		m.prefix = m.prefix[:len(m.prefix)-1]
	}
}

// WithPrefix runs fn with prefix pushed.
func (m *ItemMapper) WithPrefix(prefix string, fn func() error) error {
	m.PushPrefix(prefix)
	defer m.PopPrefix()
	return fn()
}

// Map resolves identifier to the designated item, the normalized key path
// and the value after transformers and pipes. Without a key path the
// identifier maps to the item UID.
func (m *ItemMapper) Map(identifier string) (*Item, string, any, error) {
	parts := strings.Split(identifier, "|")
	uid, keyPath, ok := strings.Cut(parts[0], ":")
	if !ok {
		keyPath = "/" + KeyUID
	}
	var item *Item
	var prefix string
	if uid == "." {
		item = m.item
		prefix = path.Join(m.prefix...)
	} else {
		var err error
		if item, err = m.item.Map(uid); err != nil {
			return nil, "", nil, err
		}
	}
	keyPath = NormalizeKeyPath(keyPath, prefix)
	value, err := item.GetByNormalizedKeyPath(keyPath, m.getters.For(item.Type()))
	if err != nil {
		return nil, "", nil, err
	}
	for _, name := range parts[1:] {
		pipe, ok := m.pipes[name]
		if !ok {
			return nil, "", nil, errors.Markf(errors.ErrNotFound, "unknown pipe '%s' in '%s'", name, identifier)
		}
		if value, err = pipe(value); err != nil {
			return nil, "", nil, errors.Wrapf(err, "pipe '%s' in '%s'", name, identifier)
		}
	}
	return item, keyPath, value, nil
}

// Get returns the value of identifier. A recursive mapper substitutes the
// value text in the context of the designated item and key path.
func (m *ItemMapper) Get(identifier string) (any, error) {
	item, keyPath, value, err := m.Map(identifier)
	if err != nil {
		return nil, err
	}
	if !m.recursive {
		return value, nil
	}
	saved, savedPrefix := m.item, m.prefix
	m.item, m.prefix = item, []string{path.Dir(keyPath)}
	defer func() { m.item, m.prefix = saved, savedPrefix }()
	return m.Substitute(valueString(value))
}

// Substitute replaces "$identifier" and "${identifier}" placeholders by
// their values and "$$" by "$". Any other "$" is an invalid placeholder.
func (m *ItemMapper) Substitute(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	var b strings.Builder
	last := 0
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:loc[0]])
		last = loc[1]
		var id string
		switch {
		case loc[2] >= 0:
			b.WriteByte('$')
			continue
		case loc[4] >= 0:
			id = text[loc[4]:loc[5]]
		case loc[6] >= 0:
			id = text[loc[6]:loc[7]]
			if !identifierPattern.MatchString(id) {
				return "", errors.Markf(errors.ErrNotFound, "invalid placeholder '${%s}' in '%s'", id, text)
			}
		default:
			return "", errors.Markf(errors.ErrNotFound, "invalid placeholder at offset %d in '%s'", loc[0], text)
		}
		value, err := m.Get(id)
		if err != nil {
			return "", errors.Wrapf(err, "substitute '%s'", text[loc[0]:loc[1]])
		}
		b.WriteString(valueString(value))
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// SubstituteWithPrefix substitutes text with prefix pushed.
func (m *ItemMapper) SubstituteWithPrefix(text, prefix string) (string, error) {
	var out string
	err := m.WithPrefix(prefix, func() error {
		var err error
		out, err = m.Substitute(text)
		return err
	})
	return out, err
}
