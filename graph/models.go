package graph

import (
	"time"
)

// Graph represents the complete item graph for visualization
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node represents one item in the graph
type Node struct {
	ID         string                 `json:"id"`              // Item UID
	Type       string                 `json:"type"`            // Resolved item type ("requirement/functional") or "untyped"
	TypeSource string                 `json:"-"`               // Internal only: "resolved" or "untyped"
	Label      string                 `json:"label"`           // Display label
	Visible    bool                   `json:"visible"`         // Backend controls visibility
	Group      int                    `json:"group,omitempty"` // For coloring/clustering (position of the type in Meta.NodeTypes)
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Link represents a declared link from a child item to its parent
type Link struct {
	Source string  `json:"source"` // Declaring item UID
	Target string  `json:"target"` // Parent item UID
	Type   string  `json:"type"`   // Link role (e.g., "requirement-refinement")
	Weight float64 `json:"value"`  // Link strength/weight (D3 uses "value")
	Label  string  `json:"label,omitempty"`
}

// Meta contains metadata about the graph
type Meta struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Stats             Stats                  `json:"stats"`
	Config            map[string]string      `json:"config"`
	NodeTypes         []NodeTypeInfo         `json:"node_types"`         // Item types present in this graph
	RelationshipTypes []RelationshipTypeInfo `json:"relationship_types"` // Link roles with physics
}

// NodeTypeInfo describes a node type and its visual configuration
type NodeTypeInfo struct {
	Type       string   `json:"type"`                 // e.g., "requirement/functional"
	Label      string   `json:"label"`                // Human-readable display name
	Color      string   `json:"color,omitempty"`      // Hex color code
	Count      int      `json:"count,omitempty"`      // Number of nodes of this type
	Opacity    *float64 `json:"opacity,omitempty"`    // Visual opacity
	Deprecated bool     `json:"deprecated,omitempty"` // Whether this type is being phased out
}

// RelationshipTypeInfo describes a link role with physics and visual configuration
type RelationshipTypeInfo struct {
	Type         string   `json:"type"`                    // Role name (e.g., "requirement-refinement")
	Label        string   `json:"label"`                   // Human-readable display name
	Color        string   `json:"color,omitempty"`         // Optional link color override
	LinkDistance *float64 `json:"link_distance,omitempty"` // D3 force distance override (nil = use default)
	LinkStrength *float64 `json:"link_strength,omitempty"` // D3 force strength override (nil = use default)
	Count        int      `json:"count,omitempty"`         // Number of links of this role
}

// Stats provides graph statistics
type Stats struct {
	TotalNodes int `json:"total_nodes,omitempty"`
	TotalEdges int `json:"total_edges,omitempty"`
	TopLevel   int `json:"top_level,omitempty"`
}
