package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/equisage/equisage/internal/infra"
	"github.com/equisage/equisage/pkg/models"
)

// Yahoo fetches price history and fundamentals from the Yahoo Finance API.
type Yahoo struct {
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewYahoo creates a Yahoo Finance client with caching and rate limiting.
func NewYahoo(cacheTTL time.Duration) *Yahoo {
	return &Yahoo{
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(5, time.Second), // 5 req/s
	}
}

// --- Yahoo Finance API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	MarketCap          *float64 `json:"marketCap"`
	TrailingPE         *float64 `json:"trailingPE"`
	ForwardPE          *float64 `json:"forwardPE"`
	DividendYield      *float64 `json:"dividendYield"`
	Sector             string   `json:"sector"`
	Industry           string   `json:"industry"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetCandles returns OHLCV candles from the Yahoo Finance chart API.
func (y *Yahoo) GetCandles(ctx context.Context, ticker string, from, to time.Time, tf models.Timeframe) ([]models.OHLCV, error) {
	cacheKey := fmt.Sprintf("hist:%s:%d:%d:%s", ticker, from.Unix(), to.Unix(), tf)
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.([]models.OHLCV), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		ticker, from.Unix(), to.Unix(), yfInterval(tf),
	)
	body, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	candles := parseYFCandles(resp.Chart.Result[0])
	y.cache.Set(cacheKey, candles)
	return candles, nil
}

// GetFundamentals returns the fundamentals snapshot from the quote API.
// Fields Yahoo does not report stay nil.
func (y *Yahoo) GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	cacheKey := "fund:" + ticker
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.Fundamentals), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s", ticker)
	body, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", ticker, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp yfQuoteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo quote: %w", err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo API error: %s", resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	r := resp.QuoteResponse.Result[0]
	fund := &models.Fundamentals{
		TrailingPE:   r.TrailingPE,
		ForwardPE:    r.ForwardPE,
		MarketCap:    r.MarketCap,
		CurrentPrice: r.RegularMarketPrice,
		Sector:       r.Sector,
		Industry:     r.Industry,
	}
	// Yahoo reports dividend yield as a percentage; the scoring rules expect
	// a ratio (0.02 == 2%).
	if r.DividendYield != nil {
		ratio := *r.DividendYield / 100
		fund.DividendYield = &ratio
	}

	y.cache.Set(cacheKey, fund)
	return fund, nil
}

// --- helpers ---

func yfInterval(tf models.Timeframe) string {
	switch tf {
	case models.Timeframe1Hour:
		return "1h"
	default:
		return "1d"
	}
}

// parseYFCandles converts the chart API's column-oriented arrays into
// candles, skipping rows with missing values (Yahoo reports nulls for
// holidays and suspended sessions).
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
