package export

import (
	"encoding/xml"
	"fmt"
	"os"

	"wallet-graph-explorer/internal/domain/entity"
	domain_service "wallet-graph-explorer/internal/domain/service"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// GraphMLExporter serializes the finished graph in GraphML, usable from
// analysis tools like Gephi.
type GraphMLExporter struct {
	path   string
	logger *logger.Logger
}

// NewGraphMLExporter creates a new GraphML exporter writing to path
func NewGraphMLExporter(path string, logger *logger.Logger) domain_service.GraphExporter {
	return &GraphMLExporter{
		path:   path,
		logger: logger.WithComponent("graphml-exporter"),
	}
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

// Export writes the graph as a GraphML document
func (e *GraphMLExporter) Export(graph *entity.Graph) error {
	doc := graphmlDoc{
		Xmlns: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "role", For: "node", AttrName: "role", AttrType: "string"},
			{ID: "balance", For: "node", AttrName: "balance", AttrType: "string"},
			{ID: "label", For: "node", AttrName: "label", AttrType: "string"},
			{ID: "tx_id", For: "edge", AttrName: "tx_id", AttrType: "string"},
			{ID: "value", For: "edge", AttrName: "value", AttrType: "string"},
			{ID: "date", For: "edge", AttrName: "date", AttrType: "string"},
		},
		Graph: graphmlGraph{EdgeDefault: "directed"},
	}

	for _, w := range graph.Wallets() {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: w.Address,
			Data: []graphmlData{
				{Key: "role", Value: string(w.Role)},
				{Key: "balance", Value: w.NetBalance.StringFixed(8)},
				{Key: "label", Value: fmt.Sprintf("%s\nBalance: %s BTC", w.ShortAddress(), w.NetBalance.StringFixed(8))},
			},
		})
	}

	for _, edge := range graph.EdgeList() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: edge.From,
			Target: edge.To,
			Data: []graphmlData{
				{Key: "tx_id", Value: edge.TxHash},
				{Key: "value", Value: edge.Value.String()},
				{Key: "date", Value: edge.Timestamp.Format("2006-01-02")},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal GraphML: %w", err)
	}
	payload := append([]byte(xml.Header), out...)
	payload = append(payload, '\n')

	if err := os.WriteFile(e.path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write GraphML file: %w", err)
	}

	e.logger.Info("Graph exported as GraphML",
		zap.String("path", e.path),
		zap.Int("nodes", len(doc.Graph.Nodes)),
		zap.Int("edges", len(doc.Graph.Edges)))
	return nil
}
