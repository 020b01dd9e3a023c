package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/domain/repository"
	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SQLiteTransactionSource implements TransactionSource over a local store with
// TRANSACT / INPUTS / OUTPUTS tables.
type SQLiteTransactionSource struct {
	client       *SQLiteClient
	fetchTimeout time.Duration
	logger       *logger.Logger
}

// NewSQLiteTransactionSource creates a new store-backed transaction source
func NewSQLiteTransactionSource(
	client *SQLiteClient,
	cfg *config.SourceConfig,
	logger *logger.Logger,
) repository.TransactionSource {
	return &SQLiteTransactionSource{
		client:       client,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger.WithComponent("sqlite-source"),
	}
}

// Fetch retrieves the transactions associated with an entity
func (s *SQLiteTransactionSource) Fetch(ctx context.Context, id entity.EntityID) ([]*entity.Transaction, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	if id.Kind == entity.EntityTxHash {
		tx, err := s.fetchTransaction(ctx, id.Value)
		if err != nil {
			return nil, err
		}
		return []*entity.Transaction{tx}, nil
	}
	return s.fetchByAddress(ctx, id.Value)
}

// Close closes the underlying database
func (s *SQLiteTransactionSource) Close(ctx context.Context) error {
	return s.client.Close()
}

// fetchByAddress resolves every transaction referencing the address as an
// input or output recipient.
func (s *SQLiteTransactionSource) fetchByAddress(ctx context.Context, address string) ([]*entity.Transaction, error) {
	rows, err := s.client.DB().QueryContext(ctx, `
		SELECT transaction_hash FROM INPUTS WHERE recipient = ?
		UNION
		SELECT transaction_hash FROM OUTPUTS WHERE recipient = ?
	`, address, address)
	if err != nil {
		return nil, fmt.Errorf("%w: address lookup for %s: %v", repository.ErrSourceUnavailable, address, err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("%w: scanning address lookup: %v", repository.ErrSourceUnavailable, err)
		}
		hashes = append(hashes, hash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: address lookup for %s: %v", repository.ErrSourceUnavailable, address, err)
	}
	if len(hashes) == 0 {
		return nil, fmt.Errorf("%w: address %s", repository.ErrNotFound, address)
	}

	transactions := make([]*entity.Transaction, 0, len(hashes))
	for _, hash := range hashes {
		tx, err := s.fetchTransaction(ctx, hash)
		if errors.Is(err, repository.ErrNotFound) {
			// Dangling reference in INPUTS/OUTPUTS, skip it.
			s.logger.Warn("Referenced transaction missing from TRANSACT", zap.String("hash", hash))
			continue
		}
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// fetchTransaction loads one transaction with its inputs and outputs
func (s *SQLiteTransactionSource) fetchTransaction(ctx context.Context, hash string) (*entity.Transaction, error) {
	var (
		txHash      string
		txTime      string
		inputTotal  string
		outputTotal string
	)
	err := s.client.DB().QueryRowContext(ctx, `
		SELECT hash, time, input_total, output_total
		FROM TRANSACT WHERE hash = ?
	`, hash).Scan(&txHash, &txTime, &inputTotal, &outputTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", repository.ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading transaction %s: %v", repository.ErrSourceUnavailable, hash, err)
	}

	tx := &entity.Transaction{
		Hash:        txHash,
		Timestamp:   parseStoreTime(txTime),
		InputTotal:  parseStoreValue(inputTotal),
		OutputTotal: parseStoreValue(outputTotal),
	}

	if tx.Inputs, err = s.fetchEntries(ctx, tx, `SELECT recipient, value FROM INPUTS WHERE transaction_hash = ?`, hash); err != nil {
		return nil, err
	}
	if tx.Outputs, err = s.fetchEntries(ctx, tx, `SELECT recipient, value FROM OUTPUTS WHERE transaction_hash = ?`, hash); err != nil {
		return nil, err
	}

	return tx, nil
}

// fetchEntries loads one side of a transaction, dropping and counting
// malformed rows instead of failing the whole record.
func (s *SQLiteTransactionSource) fetchEntries(ctx context.Context, tx *entity.Transaction, query, hash string) ([]entity.TransferEntry, error) {
	rows, err := s.client.DB().QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: loading entries of %s: %v", repository.ErrSourceUnavailable, hash, err)
	}
	defer rows.Close()

	var entries []entity.TransferEntry
	for rows.Next() {
		var (
			recipient sql.NullString
			value     sql.NullString
		)
		if err := rows.Scan(&recipient, &value); err != nil {
			return nil, fmt.Errorf("%w: scanning entries of %s: %v", repository.ErrSourceUnavailable, hash, err)
		}
		if !recipient.Valid || recipient.String == "" || !value.Valid {
			tx.Malformed++
			continue
		}
		amount, err := decimal.NewFromString(value.String)
		if err != nil {
			s.logger.Warn("Unparsable value in store",
				zap.String("hash", hash),
				zap.String("value", value.String))
			tx.Malformed++
			continue
		}
		entries = append(entries, entity.TransferEntry{Address: recipient.String, Value: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loading entries of %s: %v", repository.ErrSourceUnavailable, hash, err)
	}
	return entries, nil
}

// parseStoreTime accepts both textual timestamps and unix epochs, the two
// formats present in analyzer databases.
func parseStoreTime(value string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC()
	}
	return time.Time{}
}

func parseStoreValue(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
