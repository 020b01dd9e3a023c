package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// RunSummary is the event published after a completed expansion run. It
// carries counts only, never the graph itself.
type RunSummary struct {
	Target           string    `json:"target"`
	Depth            int       `json:"depth"`
	Nodes            int       `json:"nodes"`
	Edges            int       `json:"edges"`
	Unresolved       int       `json:"unresolved"`
	MalformedEntries int       `json:"malformed_entries"`
	CompletedAt      time.Time `json:"completed_at"`
}

// NATSPublisher publishes run summaries to NATS when enabled
type NATSPublisher struct {
	conn   *nats.Conn
	config *config.NATSConfig
	logger *logger.Logger
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(cfg *config.NATSConfig, logger *logger.Logger) *NATSPublisher {
	return &NATSPublisher{
		config: cfg,
		logger: logger.WithComponent("nats-publisher"),
	}
}

// Connect connects to the NATS server
func (p *NATSPublisher) Connect(ctx context.Context) error {
	if !p.config.Enabled {
		p.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	p.logger.Info("Connecting to NATS server", zap.String("url", p.config.URL))

	opts := []nats.Option{
		nats.Name("wallet-graph-explorer"),
		nats.Timeout(p.config.ConnectTimeout),
		nats.ReconnectWait(p.config.ReconnectDelay),
		nats.MaxReconnects(p.config.MaxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			p.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(p.config.URL, opts...)
	if err != nil {
		p.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.conn = conn
	p.logger.Info("Successfully connected to NATS")
	return nil
}

// PublishRunSummary publishes the outcome of a build run
func (p *NATSPublisher) PublishRunSummary(graph *entity.Graph, target string, depth int) error {
	if !p.config.Enabled || p.conn == nil {
		return nil
	}

	summary := RunSummary{
		Target:           target,
		Depth:            depth,
		Nodes:            len(graph.Nodes),
		Edges:            len(graph.Edges),
		Unresolved:       len(graph.Unresolved),
		MalformedEntries: graph.MalformedEntries,
		CompletedAt:      time.Now().UTC(),
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	subject := fmt.Sprintf("%s.runs", p.config.SubjectPrefix)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}

	p.logger.Info("Published run summary",
		zap.String("subject", subject),
		zap.Int("nodes", summary.Nodes),
		zap.Int("edges", summary.Edges))
	return nil
}

// Disconnect closes the NATS connection
func (p *NATSPublisher) Disconnect() {
	if p.conn != nil {
		p.logger.Info("Disconnecting from NATS")
		p.conn.Close()
	}
}
