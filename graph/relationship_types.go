package graph

import (
	"sort"
)

// RelationshipDefinition holds physics and display metadata for a link role.
type RelationshipDefinition struct {
	Role         string   `json:"role"`                    // e.g., "requirement-refinement"
	DisplayLabel string   `json:"display_label"`           // Human-readable label
	Color        string   `json:"color,omitempty"`         // Optional link color override
	LinkDistance *float64 `json:"link_distance,omitempty"` // D3 force distance (nil = use default)
	LinkStrength *float64 `json:"link_strength,omitempty"` // D3 force strength (nil = use default)
}

// collectRelationshipTypeInfo collects information about link roles present in the graph.
// Returns a list of role metadata including count and physics for each role.
func collectRelationshipTypeInfo(links []Link, relationshipDefinitions map[string]RelationshipDefinition) []RelationshipTypeInfo {
	typeCounts := make(map[string]int)
	for _, link := range links {
		typeCounts[link.Type]++
	}

	var relationshipTypes []RelationshipTypeInfo
	for linkType, count := range typeCounts {
		info := RelationshipTypeInfo{
			Type:  linkType,
			Label: linkType, // Default to role name if no definition
			Count: count,
		}
		if relDef, ok := relationshipDefinitions[linkType]; ok {
			if relDef.DisplayLabel != "" {
				info.Label = relDef.DisplayLabel
			}
			info.Color = relDef.Color
			info.LinkDistance = relDef.LinkDistance
			info.LinkStrength = relDef.LinkStrength
		}
		relationshipTypes = append(relationshipTypes, info)
	}

	sort.Slice(relationshipTypes, func(i, j int) bool {
		if relationshipTypes[i].Count != relationshipTypes[j].Count {
			return relationshipTypes[i].Count > relationshipTypes[j].Count
		}
		return relationshipTypes[i].Type < relationshipTypes[j].Type
	})

	return relationshipTypes
}
