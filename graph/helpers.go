package graph

import (
	"path"

	"github.com/teranos/specgraph/spec"
)

// labelKeys are tried in order for a human-readable node label.
var labelKeys = []string{"title", "name", "term"}

// nodeLabel returns the first string label attribute of the item, or the
// last segment of its UID.
// Example: "/req/perf/latency" without title becomes "latency"
func nodeLabel(item *spec.Item) string {
	for _, key := range labelKeys {
		if s, ok := item.Value(key).(string); ok && s != "" {
			return s
		}
	}
	return path.Base(item.UID())
}
