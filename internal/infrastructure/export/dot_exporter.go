package export

import (
	"errors"
	"fmt"
	"os"

	"wallet-graph-explorer/internal/domain/entity"
	domain_service "wallet-graph-explorer/internal/domain/service"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"go.uber.org/zap"
)

// DOTExporter renders the flow graph as graphviz DOT. Parallel edges between
// the same wallet pair collapse into one; the first discovered edge keeps its
// label.
type DOTExporter struct {
	path   string
	logger *logger.Logger
}

// NewDOTExporter creates a new DOT exporter writing to path
func NewDOTExporter(path string, logger *logger.Logger) domain_service.GraphExporter {
	return &DOTExporter{
		path:   path,
		logger: logger.WithComponent("dot-exporter"),
	}
}

// Export writes the graph in DOT format
func (e *DOTExporter) Export(g *entity.Graph) error {
	dg := graph.New(graph.StringHash, graph.Directed())

	for _, w := range g.Wallets() {
		color := colorMixed
		switch w.Role {
		case entity.RoleSender:
			color = colorSender
		case entity.RoleReceiver:
			color = colorReceiver
		}
		err := dg.AddVertex(w.Address,
			graph.VertexAttribute("label", fmt.Sprintf("%s\n%s BTC", w.ShortAddress(), w.NetBalance.StringFixed(8))),
			graph.VertexAttribute("style", "filled"),
			graph.VertexAttribute("fillcolor", color),
		)
		if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return fmt.Errorf("failed to add vertex %s: %w", w.Address, err)
		}
	}

	for _, edge := range g.EdgeList() {
		err := dg.AddEdge(edge.From, edge.To,
			graph.EdgeAttribute("label", fmt.Sprintf("%s BTC", edge.Value.String())),
		)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return fmt.Errorf("failed to add edge %s->%s: %w", edge.From, edge.To, err)
		}
	}

	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create DOT file: %w", err)
	}
	defer file.Close()

	if err := draw.DOT(dg, file); err != nil {
		return fmt.Errorf("failed to render DOT: %w", err)
	}

	e.logger.Info("Graph exported as DOT",
		zap.String("path", e.path),
		zap.Int("nodes", len(g.Nodes)))
	return nil
}
