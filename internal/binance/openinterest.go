package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// openInterestKeys are the payload fields that may carry the OI value, in
// order of preference.
var openInterestKeys = []string{"sumOpenInterest", "openInterest", "sumOpenInterestValue"}

// FetchOpenInterest returns the open-interest history for symbol, oldest
// first. Entries without a numeric value become 0.
func (c *Client) FetchOpenInterest(ctx context.Context, symbol, period string, limit int) ([]float64, error) {
	u, err := url.Parse(c.futuresAPIURL + "/futures/data/openInterestHist")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("period", period)
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open interest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("open interest request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var items []map[string]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode open interest: %w", err)
	}

	values := make([]float64, 0, len(items))
	for _, item := range items {
		values = append(values, openInterestValue(item))
	}
	return values, nil
}

func openInterestValue(item map[string]any) float64 {
	key, ok := lo.Find(openInterestKeys, func(k string) bool {
		return present(item[k])
	})
	if !ok {
		return 0
	}
	return toFloat(item[key])
}

// present reports whether an alias carries a value. Empty strings and
// numeric zeros fall through to the next alias.
func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	}
	return true
}

func toFloat(v any) float64 {
	var f float64
	var err error
	switch val := v.(type) {
	case json.Number:
		f, err = val.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(val), 64)
	case float64:
		f = val
	default:
		return 0
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
