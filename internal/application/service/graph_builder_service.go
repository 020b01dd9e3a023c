package service

import (
	"context"
	"errors"
	"fmt"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/domain/repository"
	domain_service "wallet-graph-explorer/internal/domain/service"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"go.uber.org/zap"
)

// GraphBuilderService implements the GraphBuilder interface with an explicit
// breadth-first worklist: a frontier per depth level plus a visited set, so
// cyclic or re-converging transaction graphs terminate without recursion.
type GraphBuilderService struct {
	source repository.TransactionSource
	logger *logger.Logger
}

// NewGraphBuilderService creates a new graph builder service
func NewGraphBuilderService(
	source repository.TransactionSource,
	logger *logger.Logger,
) domain_service.GraphBuilder {
	return &GraphBuilderService{
		source: source,
		logger: logger.WithComponent("graph-builder"),
	}
}

// Build expands the transaction graph rooted at target down to maxDepth
func (s *GraphBuilderService) Build(ctx context.Context, target string, maxDepth int) (*entity.Graph, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("max depth must be non-negative, got %d", maxDepth)
	}

	seed := entity.ClassifyEntity(target)
	s.logger.Info("Starting graph expansion",
		zap.String("target", target),
		zap.String("kind", string(seed.Kind)),
		zap.Int("max_depth", maxDepth))

	graph := entity.NewGraph()
	ledger := domain_service.NewBalanceLedger()
	visited := make(map[string]bool)

	frontier := []entity.EntityID{seed}
	firstFetch := true

	for depth := 0; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []entity.EntityID

		for _, id := range frontier {
			if visited[id.Value] {
				continue
			}

			txs, err := s.source.Fetch(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				// Dead-end, not a failure.
				visited[id.Value] = true
				firstFetch = false
				s.logger.Info("Entity not found in source",
					zap.String("entity", id.Value),
					zap.Int("depth", depth))
				continue
			}
			if err != nil {
				if firstFetch {
					return nil, fmt.Errorf("failed to fetch seed %s: %w", id.Value, err)
				}
				visited[id.Value] = true
				graph.MarkUnresolved(id.Value)
				s.logger.Warn("Source failure, entity left unresolved",
					zap.String("entity", id.Value),
					zap.Int("depth", depth),
					zap.Error(err))
				continue
			}

			firstFetch = false
			visited[id.Value] = true
			discovered := s.mergeTransactions(graph, ledger, txs)

			if depth < maxDepth {
				for _, addr := range discovered {
					if !visited[addr] {
						next = append(next, entity.EntityID{Kind: entity.EntityAddress, Value: addr})
					}
				}
			}
		}

		frontier = next
	}

	for addr, wallet := range graph.Nodes {
		wallet.NetBalance = ledger.NetBalance(addr)
	}

	s.logger.Info("Graph expansion completed",
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)),
		zap.Int("unresolved", len(graph.Unresolved)),
		zap.Int("malformed_entries", graph.MalformedEntries))

	return graph, nil
}

// mergeTransactions folds a batch of fetched transactions into the graph and
// ledger, once per transaction hash, and returns the counterparty addresses
// encountered. Entries without a recipient are skipped and counted.
func (s *GraphBuilderService) mergeTransactions(
	graph *entity.Graph,
	ledger *domain_service.BalanceLedger,
	txs []*entity.Transaction,
) []string {
	var discovered []string

	for _, tx := range txs {
		if !graph.MarkTransactionSeen(tx.Hash) {
			continue
		}
		graph.MalformedEntries += tx.Malformed

		for _, in := range tx.Inputs {
			if in.Address == "" {
				graph.MalformedEntries++
				continue
			}
			graph.UpsertWallet(in.Address).MarkSender()
			ledger.Debit(in.Address, in.Value)
			discovered = append(discovered, in.Address)
		}

		for _, out := range tx.Outputs {
			if out.Address == "" {
				graph.MalformedEntries++
				continue
			}
			graph.UpsertWallet(out.Address).MarkReceiver()
			ledger.Credit(out.Address, out.Value)
			discovered = append(discovered, out.Address)
		}

		// One edge per (sender, receiver, tx hash) triple, valued at the
		// receiver's output amount.
		for _, in := range tx.Inputs {
			if in.Address == "" {
				continue
			}
			for _, out := range tx.Outputs {
				if out.Address == "" {
					continue
				}
				graph.MergeEdge(in.Address, out.Address, out.Value, tx.Hash, tx.Timestamp)
			}
		}
	}

	return discovered
}
