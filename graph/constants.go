package graph

const (
	// Link weight constants
	defaultLinkWeight   = 1.0 // Initial weight for new links
	linkWeightIncrement = 0.5 // Weight increase for duplicate links with the same role

	// Type and defaults for items without a resolved type
	untypedType         = "untyped"
	defaultUntypedColor = "rgba(149, 165, 166, 0.3)" // Transparent gray
	defaultUntypedLabel = "Untyped"
)
