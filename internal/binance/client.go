// Package binance fetches kline and open-interest history from Binance public endpoints.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

const (
	DefaultSpotAPIURL    = "https://api.binance.com"
	DefaultFuturesAPIURL = "https://fapi.binance.com"
)

// Client reads spot klines and futures open-interest history.
type Client struct {
	spot          *gobinance.Client
	futuresAPIURL string
	httpClient    *http.Client
}

// NewClient creates a new Binance client. Every request is bounded by timeout.
func NewClient(spotAPIURL, futuresAPIURL string, timeout time.Duration) *Client {
	if spotAPIURL == "" {
		spotAPIURL = DefaultSpotAPIURL
	}
	if futuresAPIURL == "" {
		futuresAPIURL = DefaultFuturesAPIURL
	}
	httpClient := &http.Client{Timeout: timeout}

	spot := gobinance.NewClient("", "")
	spot.BaseURL = spotAPIURL
	spot.HTTPClient = httpClient

	return &Client{
		spot:          spot,
		futuresAPIURL: futuresAPIURL,
		httpClient:    httpClient,
	}
}

// FetchVolumeAndPrice returns the base-asset volumes and close prices of the
// latest limit klines, oldest first.
func (c *Client) FetchVolumeAndPrice(ctx context.Context, symbol, interval string, limit int) ([]float64, []float64, error) {
	klines, err := c.spot.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch klines: %w", err)
	}

	volumes := make([]float64, 0, len(klines))
	closes := make([]float64, 0, len(klines))
	for i, k := range klines {
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid volume in kline %d: %w", i, err)
		}
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid close in kline %d: %w", i, err)
		}
		volumes = append(volumes, volume.InexactFloat64())
		closes = append(closes, closePrice.InexactFloat64())
	}

	return volumes, closes, nil
}
