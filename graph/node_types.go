package graph

import (
	"sort"

	"github.com/teranos/specgraph/spec"
)

// TypeDefinition holds display metadata for an item type.
type TypeDefinition struct {
	TypeName     string  // e.g., "requirement/functional"
	DisplayColor string  // Hex color or rgba() string
	DisplayLabel string  // Human-readable label
	Deprecated   bool    // Whether this type is deprecated
	Opacity      float64 // Optional opacity (default 1.0)
}

// determineNodeType returns the resolved item type, or "untyped" when the
// repository has no type root.
func determineNodeType(item *spec.Item) (nodeType string, typeSource string) {
	if t := item.Type(); t != "" {
		return t, "resolved"
	}
	return untypedType, "untyped"
}

// collectNodeTypeInfo collects information about node types present in the graph.
// Returns a list of node type metadata including count and color for each type.
func collectNodeTypeInfo(nodes []Node, typeDefinitions map[string]TypeDefinition) []NodeTypeInfo {
	typeCounts := make(map[string]int)
	for _, node := range nodes {
		typeCounts[node.Type]++
	}

	var nodeTypes []NodeTypeInfo
	for nodeType, count := range typeCounts {
		info := NodeTypeInfo{
			Type:  nodeType,
			Label: nodeType, // Use raw type string as label
			Count: count,
		}
		if typeDef, ok := typeDefinitions[nodeType]; ok {
			info.Color = typeDef.DisplayColor
			if typeDef.DisplayLabel != "" {
				info.Label = typeDef.DisplayLabel
			}
			info.Deprecated = typeDef.Deprecated
			if typeDef.Opacity > 0 {
				opacity := typeDef.Opacity
				info.Opacity = &opacity
			}
		} else if nodeType == untypedType {
			info.Color = defaultUntypedColor
			info.Label = defaultUntypedLabel
		}
		nodeTypes = append(nodeTypes, info)
	}

	// Most common types appear first in frontend legend, ties by name
	sort.Slice(nodeTypes, func(i, j int) bool {
		if nodeTypes[i].Count != nodeTypes[j].Count {
			return nodeTypes[i].Count > nodeTypes[j].Count
		}
		return nodeTypes[i].Type < nodeTypes[j].Type
	})

	return nodeTypes
}

// assignGroups sets each node's group to the position of its type in the
// legend.
func assignGroups(nodes []Node, nodeTypes []NodeTypeInfo) {
	groups := make(map[string]int, len(nodeTypes))
	for i, info := range nodeTypes {
		groups[info.Type] = i
	}
	for i := range nodes {
		nodes[i].Group = groups[nodes[i].Type]
	}
}
