package service

import (
	"context"

	"wallet-graph-explorer/internal/domain/entity"
)

// GraphBuilder defines the interface for the bounded recursive expansion
type GraphBuilder interface {
	// Build expands the transaction graph rooted at target down to maxDepth.
	// Depth 0 expands only the seed's own transactions without recursing into
	// counterparties.
	Build(ctx context.Context, target string, maxDepth int) (*entity.Graph, error)
}

// GraphExporter defines the interface for consumers of a finished graph
type GraphExporter interface {
	// Export writes a rendition of the graph to the exporter's destination
	Export(graph *entity.Graph) error
}
