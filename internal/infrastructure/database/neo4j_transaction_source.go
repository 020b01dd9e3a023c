package database

import (
	"context"
	"fmt"
	"time"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/domain/repository"
	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Neo4JTransactionSource implements TransactionSource over an indexer-populated
// graph store where value flows are (:Wallet)-[:SENT_TO]->(:Wallet)
// relationships carrying tx_hash, value and timestamp. Each relationship maps
// to a single-input, single-output transaction.
type Neo4JTransactionSource struct {
	client       *Neo4JClient
	database     string
	fetchTimeout time.Duration
	logger       *logger.Logger
}

// NewNeo4JTransactionSource creates a new graph-store-backed transaction source
func NewNeo4JTransactionSource(
	client *Neo4JClient,
	neoCfg *config.Neo4JConfig,
	srcCfg *config.SourceConfig,
	logger *logger.Logger,
) repository.TransactionSource {
	return &Neo4JTransactionSource{
		client:       client,
		database:     neoCfg.Database,
		fetchTimeout: srcCfg.FetchTimeout,
		logger:       logger.WithComponent("neo4j-source"),
	}
}

// Fetch retrieves the transactions associated with an entity
func (s *Neo4JTransactionSource) Fetch(ctx context.Context, id entity.EntityID) ([]*entity.Transaction, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	query := `
		MATCH (from:Wallet)-[r:SENT_TO]->(to:Wallet)
		WHERE from.address = $value OR to.address = $value
		RETURN from.address, to.address, r.tx_hash, r.value, r.timestamp
	`
	if id.Kind == entity.EntityTxHash {
		query = `
			MATCH (from:Wallet)-[r:SENT_TO {tx_hash: $value}]->(to:Wallet)
			RETURN from.address, to.address, r.tx_hash, r.value, r.timestamp
		`
	}

	session := s.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]interface{}{"value": id.Value})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", repository.ErrSourceUnavailable, id.Value, err)
	}

	records := result.([]*neo4j.Record)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %s", repository.ErrNotFound, id.Kind, id.Value)
	}

	transactions := make([]*entity.Transaction, 0, len(records))
	for _, record := range records {
		tx, ok := s.mapRecord(record)
		if !ok {
			continue
		}
		transactions = append(transactions, tx)
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w: %s %s", repository.ErrNotFound, id.Kind, id.Value)
	}
	return transactions, nil
}

// Close closes the underlying driver
func (s *Neo4JTransactionSource) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// mapRecord converts one SENT_TO relationship into a transaction record
func (s *Neo4JTransactionSource) mapRecord(record *neo4j.Record) (*entity.Transaction, bool) {
	values := record.Values

	from, fromOK := values[0].(string)
	to, toOK := values[1].(string)
	hash, hashOK := values[2].(string)
	if !fromOK || !toOK || !hashOK || hash == "" {
		s.logger.Warn("Skipping malformed SENT_TO relationship")
		return nil, false
	}

	amount := decimal.Zero
	if raw, ok := values[3].(string); ok {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			s.logger.Warn("Unparsable relationship value",
				zap.String("tx_hash", hash),
				zap.String("value", raw))
		} else {
			amount = parsed
		}
	}

	var ts time.Time
	if t, ok := values[4].(time.Time); ok {
		ts = t
	}

	return &entity.Transaction{
		Hash:        hash,
		Timestamp:   ts,
		InputTotal:  amount,
		OutputTotal: amount,
		Inputs:      []entity.TransferEntry{{Address: from, Value: amount}},
		Outputs:     []entity.TransferEntry{{Address: to, Value: amount}},
	}, true
}
