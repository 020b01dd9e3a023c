package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wallet-graph-explorer/internal/domain/entity"
	"wallet-graph-explorer/internal/domain/repository"
	"wallet-graph-explorer/internal/infrastructure/config"
	"wallet-graph-explorer/internal/infrastructure/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// httpDoer lets tests inject a fake HTTP client
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChainAPISource implements TransactionSource against a blockchain.info-style
// REST API: GET {base}/rawaddr/{address} and GET {base}/rawtx/{hash}. Values
// arrive in satoshis and are normalized to BTC so both backends speak the
// same unit within a run.
type ChainAPISource struct {
	baseURL       string
	hc            httpDoer
	retryAttempts int
	retryDelay    time.Duration
	logger        *logger.Logger
}

// NewChainAPISource creates a new API-backed transaction source
func NewChainAPISource(cfg *config.APIConfig, logger *logger.Logger) repository.TransactionSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChainAPISource{
		baseURL:       cfg.BaseURL,
		hc:            &http.Client{Timeout: timeout},
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		logger:        logger.WithComponent("chain-api-source"),
	}
}

// rawTransaction is the wire format of one transaction
type rawTransaction struct {
	Hash   string `json:"hash"`
	Time   int64  `json:"time"`
	Inputs []struct {
		PrevOut *struct {
			Addr  string `json:"addr"`
			Value int64  `json:"value"`
		} `json:"prev_out"`
	} `json:"inputs"`
	Out []struct {
		Addr  string `json:"addr"`
		Value int64  `json:"value"`
	} `json:"out"`
}

// rawAddress is the wire format of a per-address transaction listing
type rawAddress struct {
	Address string           `json:"address"`
	Txs     []rawTransaction `json:"txs"`
}

// Fetch retrieves the transactions associated with an entity
func (s *ChainAPISource) Fetch(ctx context.Context, id entity.EntityID) ([]*entity.Transaction, error) {
	if id.Kind == entity.EntityTxHash {
		body, err := s.get(ctx, fmt.Sprintf("%s/rawtx/%s", s.baseURL, id.Value))
		if err != nil {
			return nil, err
		}
		var raw rawTransaction
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("%w: decoding rawtx response: %v", repository.ErrSourceUnavailable, err)
		}
		return []*entity.Transaction{s.normalize(&raw)}, nil
	}

	body, err := s.get(ctx, fmt.Sprintf("%s/rawaddr/%s", s.baseURL, id.Value))
	if err != nil {
		return nil, err
	}
	var raw rawAddress
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding rawaddr response: %v", repository.ErrSourceUnavailable, err)
	}
	if len(raw.Txs) == 0 {
		return nil, fmt.Errorf("%w: address %s has no transactions", repository.ErrNotFound, id.Value)
	}

	transactions := make([]*entity.Transaction, 0, len(raw.Txs))
	for i := range raw.Txs {
		transactions = append(transactions, s.normalize(&raw.Txs[i]))
	}
	return transactions, nil
}

// Close is a no-op; the HTTP client holds no persistent resources
func (s *ChainAPISource) Close(ctx context.Context) error {
	return nil
}

// get performs one GET with retry and backoff. 404 is a terminal dead-end;
// everything else is retried and finally reported as a source failure.
func (s *ChainAPISource) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying chain API request",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-time.After(s.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", repository.ErrSourceUnavailable, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: building request: %v", repository.ErrSourceUnavailable, err)
		}

		resp, err := s.hc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, url)
		case readErr != nil:
			lastErr = readErr
		default:
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("%w: %s: %v", repository.ErrSourceUnavailable, url, lastErr)
}

// normalize converts a wire transaction into the domain record, dropping and
// counting entries without a resolvable address.
func (s *ChainAPISource) normalize(raw *rawTransaction) *entity.Transaction {
	tx := &entity.Transaction{
		Hash:      raw.Hash,
		Timestamp: time.Unix(raw.Time, 0).UTC(),
	}

	for _, in := range raw.Inputs {
		if in.PrevOut == nil || in.PrevOut.Addr == "" {
			// Coinbase inputs and non-standard scripts carry no address.
			tx.Malformed++
			continue
		}
		value := satoshiToBTC(in.PrevOut.Value)
		tx.Inputs = append(tx.Inputs, entity.TransferEntry{Address: in.PrevOut.Addr, Value: value})
		tx.InputTotal = tx.InputTotal.Add(value)
	}

	for _, out := range raw.Out {
		if out.Addr == "" {
			tx.Malformed++
			continue
		}
		value := satoshiToBTC(out.Value)
		tx.Outputs = append(tx.Outputs, entity.TransferEntry{Address: out.Addr, Value: value})
		tx.OutputTotal = tx.OutputTotal.Add(value)
	}

	return tx
}

func satoshiToBTC(satoshis int64) decimal.Decimal {
	return decimal.New(satoshis, -8)
}
