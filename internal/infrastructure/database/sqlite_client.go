package database

import (
	"context"
	"database/sql"
	"fmt"

	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/logger"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteClient handles the local blockchain store connection
type SQLiteClient struct {
	db     *sql.DB
	config *config.SQLiteConfig
	logger *logger.Logger
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(cfg *config.SQLiteConfig, logger *logger.Logger) *SQLiteClient {
	return &SQLiteClient{
		config: cfg,
		logger: logger.WithComponent("sqlite-client"),
	}
}

// Connect opens the database file and verifies it is reachable
func (c *SQLiteClient) Connect(ctx context.Context) error {
	c.logger.Info("Opening SQLite database", zap.String("path", c.config.Path))

	db, err := sql.Open("sqlite3", c.config.Path)
	if err != nil {
		c.logger.Error("Failed to open SQLite database", zap.Error(err))
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		c.logger.Error("Failed to ping SQLite database", zap.Error(err))
		return fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	c.db = db
	c.logger.Info("Successfully opened SQLite database")
	return nil
}

// Close closes the database
func (c *SQLiteClient) Close() error {
	if c.db != nil {
		c.logger.Info("Closing SQLite database")
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database handle
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}
