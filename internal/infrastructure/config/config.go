package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"

	"wallet-graph-explorer/internal/domain/entity"
)

// Source backend identifiers
const (
	BackendSQLite = "sqlite"
	BackendAPI    = "api"
	BackendNeo4J  = "neo4j"
)

// Config represents the application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Explore ExploreConfig `mapstructure:"explore"`
	Source  SourceConfig  `mapstructure:"source"`
	SQLite  SQLiteConfig  `mapstructure:"sqlite"`
	API     APIConfig     `mapstructure:"api"`
	Neo4J   Neo4JConfig   `mapstructure:"neo4j"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Export  ExportConfig  `mapstructure:"export"`
}

// AppConfig represents application-specific configuration
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ExploreConfig represents the expansion parameters
type ExploreConfig struct {
	Target          string `mapstructure:"target"`
	Depth           int    `mapstructure:"depth"`
	ValidateAddress bool   `mapstructure:"validate_address"`
	ForceHTML       bool   `mapstructure:"force_html"`
}

// SourceConfig selects and tunes the transaction source backend
type SourceConfig struct {
	Backend      string        `mapstructure:"backend"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// SQLiteConfig represents the local store backend configuration
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// APIConfig represents the remote chain API backend configuration
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// Neo4JConfig represents the graph store backend configuration
type Neo4JConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
}

// NATSConfig represents the optional run-summary publisher configuration
type NATSConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
}

// ExportTarget represents one export destination
type ExportTarget struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ExportConfig represents the export destinations
type ExportConfig struct {
	GraphML ExportTarget `mapstructure:"graphml"`
	HTML    ExportTarget `mapstructure:"html"`
	CSV     ExportTarget `mapstructure:"csv"`
	DOT     ExportTarget `mapstructure:"dot"`
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/wallet-graph-explorer")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")

	// Map environment variables to nested config keys
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Default values
	setDefaults()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")

	// Explore defaults
	viper.SetDefault("explore.depth", 0)
	viper.SetDefault("explore.validate_address", false)
	viper.SetDefault("explore.force_html", false)

	// Source defaults
	viper.SetDefault("source.backend", BackendSQLite)
	viper.SetDefault("source.fetch_timeout", "10s")

	// SQLite defaults
	viper.SetDefault("sqlite.path", "BC.db")

	// API defaults
	viper.SetDefault("api.base_url", "https://blockchain.info")
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("api.retry_attempts", 2)
	viper.SetDefault("api.retry_delay", "500ms")

	// Neo4J defaults
	viper.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.connect_timeout", "10s")
	viper.SetDefault("neo4j.max_connection_pool_size", 50)
	viper.SetDefault("neo4j.connection_acquisition_timeout", "60s")

	// NATS defaults
	viper.SetDefault("nats.enabled", false)
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.subject_prefix", "wallet-graphs")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_delay", "2s")
	viper.SetDefault("nats.max_reconnects", 5)

	// Export defaults
	viper.SetDefault("export.graphml.enabled", true)
	viper.SetDefault("export.graphml.path", "graph.graphml")
	viper.SetDefault("export.html.enabled", true)
	viper.SetDefault("export.html.path", "transactions.html")
	viper.SetDefault("export.csv.enabled", false)
	viper.SetDefault("export.csv.path", "transactions.csv")
	viper.SetDefault("export.dot.enabled", false)
	viper.SetDefault("export.dot.path", "graph.gv")

	// Bind env for target/depth so one-off runs need no config file
	viper.BindEnv("explore.target", "EXPLORE_TARGET")
	viper.BindEnv("explore.depth", "EXPLORE_DEPTH")
}

// Validate checks the configuration before the expansion runs. A missing
// target is fatal here, never deeper in the core.
func (c *Config) Validate() error {
	if c.Explore.Target == "" {
		return fmt.Errorf("explore.target is required")
	}
	if c.Explore.Depth < 0 {
		return fmt.Errorf("explore.depth must be non-negative, got %d", c.Explore.Depth)
	}
	if l := len(c.Explore.Target); l < 26 || l > 90 {
		return fmt.Errorf("explore.target has invalid length %d, want 26-90 characters", l)
	}

	switch c.Source.Backend {
	case BackendSQLite, BackendAPI, BackendNeo4J:
	default:
		return fmt.Errorf("unknown source.backend %q", c.Source.Backend)
	}

	if c.Explore.ValidateAddress {
		if id := entity.ClassifyEntity(c.Explore.Target); id.Kind == entity.EntityAddress {
			if _, err := btcutil.DecodeAddress(c.Explore.Target, &chaincfg.MainNetParams); err != nil {
				return fmt.Errorf("explore.target is not a valid mainnet address: %w", err)
			}
		}
	}

	return nil
}
