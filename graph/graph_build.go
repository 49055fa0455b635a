package graph

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teranos/specgraph/enabledby"
	"github.com/teranos/specgraph/logger"
	"github.com/teranos/specgraph/spec"
)

// Build converts the repository into a graph visualization structure.
// Every item becomes a node; every declared link becomes a link from the
// declaring item to its parent. Link weights accumulate for repeated links
// with the same role.
func (b *Builder) Build(repo *spec.Repository) *Graph {
	cfg := repo.Config()
	graph := &Graph{
		Nodes: []Node{},
		Links: []Link{},
		Meta: Meta{
			GeneratedAt: time.Now(),
			Stats:       Stats{},
			Config: map[string]string{
				"paths":         strings.Join(cfg.Paths, ","),
				"type_root_uid": cfg.TypeRootUID,
				"description":   fmt.Sprintf("Item graph of %d items", repo.Len()),
			},
		},
	}

	linkMap := make(map[string]*Link)
	for _, item := range repo.Items() {
		graph.Nodes = append(graph.Nodes, b.node(item))

		for link := range item.LinksToParents() {
			role := link.Role()
			linkID := fmt.Sprintf("%s\x00%s\x00%s", item.UID(), role, link.Item().UID())
			if existing, ok := linkMap[linkID]; ok {
				existing.Weight += linkWeightIncrement
				continue
			}
			linkMap[linkID] = &Link{
				Source: item.UID(),
				Target: link.Item().UID(),
				Type:   role,
				Weight: defaultLinkWeight,
				Label:  role,
			}
		}
	}

	// Sort links by composite key for deterministic output
	linkIDs := make([]string, 0, len(linkMap))
	for id := range linkMap {
		linkIDs = append(linkIDs, id)
	}
	sort.Strings(linkIDs)
	for _, id := range linkIDs {
		graph.Links = append(graph.Links, *linkMap[id])
	}

	graph.Meta.Stats.TotalNodes = len(graph.Nodes)
	graph.Meta.Stats.TotalEdges = len(graph.Links)
	graph.Meta.Stats.TopLevel = len(repo.TopLevel())

	graph.Meta.NodeTypes = collectNodeTypeInfo(graph.Nodes, b.typeDefinitions)
	assignGroups(graph.Nodes, graph.Meta.NodeTypes)
	graph.Meta.RelationshipTypes = collectRelationshipTypeInfo(graph.Links, b.relationshipDefinitions)

	b.logger.Debugw("Built item graph",
		logger.FieldItems, graph.Meta.Stats.TotalNodes,
		logger.FieldCount, graph.Meta.Stats.TotalEdges)
	return graph
}

func (b *Builder) node(item *spec.Item) Node {
	nodeType, typeSource := determineNodeType(item)
	node := Node{
		ID:         item.UID(),
		Type:       nodeType,
		TypeSource: typeSource,
		Label:      nodeLabel(item),
		Visible:    true,
		Metadata: map[string]interface{}{
			"file": item.File(),
		},
	}
	if item.Has(spec.KeyEnabledBy) {
		if expr, err := item.EnabledBy(); err == nil {
			node.Metadata["enabled_by"] = enabledby.Render(expr, enabledby.Python)
		} else {
			b.logger.Warnw("Skipping malformed enabled-by",
				logger.FieldUID, item.UID(), logger.FieldError, err)
		}
	}
	return node
}
