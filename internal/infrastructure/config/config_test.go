package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Explore: ExploreConfig{
			Target: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
			Depth:  2,
		},
		Source: SourceConfig{Backend: BackendSQLite},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingTargetIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.Explore.Target = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explore.target")
}

func TestValidate_NegativeDepth(t *testing.T) {
	cfg := validConfig()
	cfg.Explore.Depth = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_TargetLength(t *testing.T) {
	cfg := validConfig()
	cfg.Explore.Target = "tooshort"
	assert.Error(t, cfg.Validate())

	cfg.Explore.Target = strings.Repeat("x", 91)
	assert.Error(t, cfg.Validate())

	// A transaction hash length target is fine.
	cfg.Explore.Target = strings.Repeat("a", 64)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Source.Backend = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestValidate_StrictAddressValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Explore.ValidateAddress = true

	// Genesis address decodes.
	require.NoError(t, cfg.Validate())

	cfg.Explore.Target = "1NotARealAddressButLongEnough0OIl"
	assert.Error(t, cfg.Validate())

	// Hash targets bypass address decoding.
	cfg.Explore.Target = strings.Repeat("a", 64)
	assert.NoError(t, cfg.Validate())
}
