// Package models defines the core data structures used throughout equisage.
package models

import "time"

// OHLCV represents a single candlestick bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Closes extracts the close prices from a candle series, preserving order.
func Closes(candles []OHLCV) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Timeframe represents chart timeframe for OHLCV data.
type Timeframe string

const (
	Timeframe1Hour Timeframe = "1h"
	Timeframe1Day  Timeframe = "1d"
)

// Fundamentals holds company valuation figures for one ticker.
// Pointer fields distinguish "not reported" from zero: a nil value means the
// provider had no data, and scoring rules must skip it rather than treat it
// as zero.
type Fundamentals struct {
	TrailingPE    *float64 `json:"trailing_pe,omitempty"`
	ForwardPE     *float64 `json:"forward_pe,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`
}

// NewsArticle represents a single news article.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// RawFact is the raw-fetch record for one ticker: everything the analysis
// stages consume. It is written exactly once per run by the fetch stage and
// read-only afterwards. Both price series are ordered ascending by timestamp
// with no duplicate timestamps.
type RawFact struct {
	Ticker       string        `json:"ticker"`
	Daily        []OHLCV       `json:"history_daily"`
	Hourly       []OHLCV       `json:"history_hourly"`
	Fundamentals Fundamentals  `json:"fundamentals"`
	News         []NewsArticle `json:"news"`
	FetchedAt    time.Time     `json:"fetched_at"`
}
