// Package graph exports the link graph of a specification repository as a
// node/link document for visualization.
package graph

import (
	"go.uber.org/zap"

	"github.com/teranos/specgraph/logger"
)

// Builder builds graph structures from a loaded repository
type Builder struct {
	typeDefinitions         map[string]TypeDefinition
	relationshipDefinitions map[string]RelationshipDefinition
	logger                  *zap.SugaredLogger
}

// NewBuilder creates a graph builder. A nil logger selects the graph
// component logger.
func NewBuilder(l *zap.SugaredLogger) *Builder {
	if l == nil {
		l = logger.ComponentLogger("graph")
	}
	return &Builder{
		typeDefinitions:         make(map[string]TypeDefinition),
		relationshipDefinitions: make(map[string]RelationshipDefinition),
		logger:                  l.Named("builder"),
	}
}

// DefineType sets display metadata for an item type.
func (b *Builder) DefineType(def TypeDefinition) {
	b.typeDefinitions[def.TypeName] = def
}

// DefineRelationship sets physics and display metadata for a link role.
func (b *Builder) DefineRelationship(def RelationshipDefinition) {
	b.relationshipDefinitions[def.Role] = def
}
