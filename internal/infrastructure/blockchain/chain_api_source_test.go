package blockchain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/domain/repository"
	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apiHash = strings.Repeat("d", 64)

func newAPISource(t *testing.T, handler http.Handler) *ChainAPISource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	src := NewChainAPISource(&config.APIConfig{
		BaseURL:       server.URL,
		Timeout:       5 * time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewNopLogger())
	return src.(*ChainAPISource)
}

func TestChainAPISource_FetchByAddress(t *testing.T) {
	body := fmt.Sprintf(`{
		"address": "1Sender",
		"txs": [{
			"hash": %q,
			"time": 1704879000,
			"inputs": [
				{"prev_out": {"addr": "1Sender", "value": 500000000}},
				{"prev_out": null}
			],
			"out": [
				{"addr": "1Receiver", "value": 300000000},
				{"addr": "", "value": 100000000}
			]
		}]
	}`, apiHash)

	src := newAPISource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rawaddr/1SenderAddressLongEnoughToUse", r.URL.Path)
		fmt.Fprint(w, body)
	}))

	txs, err := src.Fetch(context.Background(), entity.EntityID{
		Kind: entity.EntityAddress, Value: "1SenderAddressLongEnoughToUse",
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, apiHash, tx.Hash)
	assert.Equal(t, time.Unix(1704879000, 0).UTC(), tx.Timestamp)

	// Satoshis normalized to BTC.
	require.Len(t, tx.Inputs, 1)
	assert.True(t, tx.Inputs[0].Value.Equal(decimal.RequireFromString("5")))
	require.Len(t, tx.Outputs, 1)
	assert.Equal(t, "1Receiver", tx.Outputs[0].Address)
	assert.True(t, tx.Outputs[0].Value.Equal(decimal.RequireFromString("3")))

	// Coinbase input and address-less output dropped and counted.
	assert.Equal(t, 2, tx.Malformed)
	assert.True(t, tx.InputTotal.Equal(decimal.RequireFromString("5")))
	assert.True(t, tx.OutputTotal.Equal(decimal.RequireFromString("3")))
}

func TestChainAPISource_FetchByHash(t *testing.T) {
	src := newAPISource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rawtx/"+apiHash, r.URL.Path)
		fmt.Fprintf(w, `{"hash": %q, "time": 1704879000,
			"inputs": [{"prev_out": {"addr": "A", "value": 100}}],
			"out": [{"addr": "B", "value": 100}]}`, apiHash)
	}))

	txs, err := src.Fetch(context.Background(), entity.EntityID{Kind: entity.EntityTxHash, Value: apiHash})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Outputs[0].Value.Equal(decimal.RequireFromString("0.000001")))
}

func TestChainAPISource_NotFound(t *testing.T) {
	src := newAPISource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := src.Fetch(context.Background(), entity.EntityID{
		Kind: entity.EntityAddress, Value: "1UnknownAddressNowhereToBeSee",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChainAPISource_EmptyTxListIsNotFound(t *testing.T) {
	src := newAPISource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"address": "1Quiet", "txs": []}`)
	}))

	_, err := src.Fetch(context.Background(), entity.EntityID{
		Kind: entity.EntityAddress, Value: "1QuietAddressWithNothingSeen",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChainAPISource_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	src := newAPISource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprintf(w, `{"hash": %q, "time": 0, "inputs": [], "out": [{"addr": "B", "value": 1}]}`, apiHash)
	}))

	txs, err := src.Fetch(context.Background(), entity.EntityID{Kind: entity.EntityTxHash, Value: apiHash})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestChainAPISource_ExhaustedRetriesAreSourceUnavailable(t *testing.T) {
	var calls atomic.Int32
	src := newAPISource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := src.Fetch(context.Background(), entity.EntityID{Kind: entity.EntityTxHash, Value: apiHash})
	assert.ErrorIs(t, err, repository.ErrSourceUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}
