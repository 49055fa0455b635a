package spec

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/specgraph/errors"
)

// Record is the attribute mapping of one item as decoded from its file.
type Record = map[string]any

// Reserved and well-known attribute names.
const (
	KeyFile      = "_file"
	KeyUID       = "_uid"
	KeyType      = "_type"
	KeyLinks     = "links"
	KeyEnabledBy = "enabled-by"

	LinkKeyUID  = "uid"
	LinkKeyRole = "role"
)

// NormalizeKeyPath joins a relative key path to the prefix and cleans it.
// Absolute key paths ignore the prefix.
func NormalizeKeyPath(keyPath, prefix string) string {
	if !strings.HasPrefix(keyPath, "/") {
		keyPath = path.Join(prefix, keyPath)
	}
	return path.Clean(keyPath)
}

// parseSegment splits "name[3]" into ("name", 3). Segments without a
// subscript have index -1.
func parseSegment(segment string) (string, int, error) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, -1, nil
	}
	end := strings.IndexByte(segment[open:], ']')
	if end < 0 {
		return "", -1, errors.Markf(errors.ErrNotFound, "unterminated subscript in key path segment '%s'", segment)
	}
	index, err := strconv.Atoi(segment[open+1 : open+end])
	if err != nil || index < 0 {
		return "", -1, errors.Markf(errors.ErrNotFound, "invalid subscript in key path segment '%s'", segment)
	}
	return segment[:open], index, nil
}

// normalizeRecord returns a deep copy of the record in canonical form. Values
// decoded by different codecs (YAML, msgpack) compare equal afterwards:
// integers become int unless they only fit in uint64, and timestamps are in
// UTC.
func normalizeRecord(r map[string]any) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return normalizeRecord(x)
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = normalizeValue(vv)
		}
		return out
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		if uint64(x) > math.MaxInt64 {
			return uint64(x)
		}
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		if x > math.MaxInt64 {
			return x
		}
		return int(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.UTC()
	}
	return v
}

// valueString renders an attribute value for text substitution.
func valueString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	return fmt.Sprint(v)
}
