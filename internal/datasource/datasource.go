// Package datasource implements the fetch collaborator: it assembles the
// raw-fetch record (price history, fundamentals, news) for a ticker from
// Yahoo Finance and RSS news feeds. The analysis pipeline only sees the
// Fetcher interface, so tests substitute a stub.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/equisage/equisage/pkg/models"
)

// Fetcher produces the raw-fetch record for a ticker.
type Fetcher interface {
	// Fetch returns all raw data for the ticker, or an error if not even a
	// daily price history could be obtained. Fundamentals and news are
	// best-effort: their absence shows up as empty fields, not an error.
	Fetch(ctx context.Context, ticker string) (*models.RawFact, error)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = fmt.Errorf("ticker not found")

// ErrNoHistory is returned when no price history is available for a ticker.
var ErrNoHistory = fmt.Errorf("no price history available")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request, returning the response body. The caller is
// responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &ErrHTTP{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, nil
}

// --- Market fetcher ---

// FetchOptions tunes caching and news volume for the market fetcher.
// Zero values fall back to the defaults.
type FetchOptions struct {
	CacheTTL  time.Duration // applied to the price and news caches
	NewsLimit int           // max articles per ticker
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.NewsLimit <= 0 {
		o.NewsLimit = 20
	}
	return o
}

// MarketFetcher assembles RawFacts from Yahoo Finance and news feeds.
type MarketFetcher struct {
	yahoo     *Yahoo
	news      *News
	newsLimit int
	log       zerolog.Logger
}

// NewMarketFetcher creates a fetcher with default sources.
func NewMarketFetcher(opts FetchOptions, log zerolog.Logger) *MarketFetcher {
	opts = opts.withDefaults()
	return &MarketFetcher{
		yahoo:     NewYahoo(opts.CacheTTL),
		news:      NewNews(opts.CacheTTL),
		newsLimit: opts.NewsLimit,
		log:       log.With().Str("component", "fetcher").Logger(),
	}
}

// Yahoo exposes the underlying Yahoo client for direct access.
func (f *MarketFetcher) Yahoo() *Yahoo { return f.yahoo }

// NewsSource exposes the underlying news source for direct access.
func (f *MarketFetcher) NewsSource() *News { return f.news }

// Fetch assembles the raw-fetch record concurrently: one year of daily
// candles, three months of hourly candles, the fundamentals snapshot, and
// recent news. Only a missing daily history makes the whole fetch fail.
func (f *MarketFetcher) Fetch(ctx context.Context, ticker string) (*models.RawFact, error) {
	fact := &models.RawFact{
		Ticker:    ticker,
		FetchedAt: time.Now(),
	}

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		candles, err := f.yahoo.GetCandles(gctx, ticker, now.AddDate(-1, 0, 0), now, models.Timeframe1Day)
		if err != nil {
			return fmt.Errorf("daily history for %s: %w", ticker, err)
		}
		fact.Daily = normalizeCandles(candles)
		return nil
	})

	g.Go(func() error {
		candles, err := f.yahoo.GetCandles(gctx, ticker, now.AddDate(0, -3, 0), now, models.Timeframe1Hour)
		if err != nil {
			// Hourly data is part of the record but no stage depends on it.
			f.log.Warn().Str("ticker", ticker).Err(err).Msg("hourly history unavailable")
			return nil
		}
		fact.Hourly = normalizeCandles(candles)
		return nil
	})

	g.Go(func() error {
		fund, err := f.yahoo.GetFundamentals(gctx, ticker)
		if err != nil {
			f.log.Warn().Str("ticker", ticker).Err(err).Msg("fundamentals unavailable")
			return nil
		}
		fact.Fundamentals = *fund
		return nil
	})

	g.Go(func() error {
		articles, err := f.news.GetStockNews(gctx, ticker, f.newsLimit)
		if err != nil {
			f.log.Warn().Str("ticker", ticker).Err(err).Msg("news unavailable")
			return nil
		}
		fact.News = articles
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(fact.Daily) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, ticker)
	}

	f.log.Info().
		Str("ticker", ticker).
		Int("daily", len(fact.Daily)).
		Int("hourly", len(fact.Hourly)).
		Int("news", len(fact.News)).
		Msg("raw data fetched")

	return fact, nil
}

// normalizeCandles sorts candles ascending by timestamp and drops duplicate
// timestamps, keeping the last occurrence. The RawFact invariant requires
// a strictly ordered series.
func normalizeCandles(candles []models.OHLCV) []models.OHLCV {
	if len(candles) == 0 {
		return candles
	}
	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	out := candles[:0]
	for _, c := range candles {
		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(c.Timestamp) {
			out[len(out)-1] = c
			continue
		}
		out = append(out, c)
	}
	return out
}
