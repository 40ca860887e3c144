package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pledgebook/models"
)

const (
	// DefaultFeedURL is the public simple-price endpoint
	DefaultFeedURL = "https://api.coingecko.com/api/v3/simple/price?ids=pi-network&vs_currencies=php,usd"
	// DefaultAssetID is the key the feed reports the quote under
	DefaultAssetID = "pi-network"
	// DefaultTimeout bounds a single feed request
	DefaultTimeout = 6 * time.Second
)

// ErrMalformedQuote means the feed answered but without usable prices
var ErrMalformedQuote = errors.New("malformed price quote")

// CoinGeckoClient fetches quotes from a CoinGecko style simple-price endpoint
type CoinGeckoClient struct {
	url        string
	assetID    string
	httpClient *http.Client
}

// NewCoinGeckoClient creates a feed client. Empty arguments take the defaults.
func NewCoinGeckoClient(url, assetID string, timeout time.Duration) *CoinGeckoClient {
	if url == "" {
		url = DefaultFeedURL
	}
	if assetID == "" {
		assetID = DefaultAssetID
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CoinGeckoClient{
		url:        url,
		assetID:    assetID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch performs one request. Any non-200 answer, or a body missing either
// price as a number, is an error.
func (c *CoinGeckoClient) Fetch(ctx context.Context) (models.PriceQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to call price feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.PriceQuote{}, fmt.Errorf("price feed error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload map[string]map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.PriceQuote{}, fmt.Errorf("failed to parse price feed response: %w", err)
	}

	prices, ok := payload[c.assetID]
	if !ok {
		return models.PriceQuote{}, fmt.Errorf("%w: no entry for %s", ErrMalformedQuote, c.assetID)
	}

	php, err := number(prices, "php")
	if err != nil {
		return models.PriceQuote{}, err
	}
	usd, err := number(prices, "usd")
	if err != nil {
		return models.PriceQuote{}, err
	}

	return models.PriceQuote{PHP: php, USD: usd}, nil
}

func number(prices map[string]json.RawMessage, currency string) (float64, error) {
	raw, ok := prices[currency]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedQuote, currency)
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return 0, fmt.Errorf("%w: %s is not a number", ErrMalformedQuote, currency)
	}
	return *v, nil
}
