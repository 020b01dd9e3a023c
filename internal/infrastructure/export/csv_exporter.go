package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"wallet-graph-explorer/internal/domain/entity"
	domain_service "wallet-graph-explorer/internal/domain/service"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// CSVExporter dumps the graph's transaction edges as a flat table
type CSVExporter struct {
	path   string
	logger *logger.Logger
}

// NewCSVExporter creates a new CSV exporter writing to path
func NewCSVExporter(path string, logger *logger.Logger) domain_service.GraphExporter {
	return &CSVExporter{
		path:   path,
		logger: logger.WithComponent("csv-exporter"),
	}
}

// Export writes one row per edge
func (e *CSVExporter) Export(graph *entity.Graph) error {
	file, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"tx_hash", "sender", "receiver", "value", "timestamp"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, edge := range graph.EdgeList() {
		row := []string{
			edge.TxHash,
			edge.From,
			edge.To,
			edge.Value.String(),
			edge.Timestamp.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	e.logger.Info("Transactions exported as CSV",
		zap.String("path", e.path),
		zap.Int("rows", len(graph.Edges)))
	return nil
}
