package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/analysis/technical"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// TechnicalStage computes indicators over the daily close series and scores
// the chart picture.
type TechnicalStage struct {
	store *store.FactStore
	log   zerolog.Logger
}

// NewTechnicalStage creates the technical analysis stage.
func NewTechnicalStage(st *store.FactStore, log zerolog.Logger) *TechnicalStage {
	return &TechnicalStage{
		store: st,
		log:   log.With().Str("agent", "technical").Logger(),
	}
}

// Name returns the stage identifier.
func (s *TechnicalStage) Name() string { return "technical" }

// Run derives RSI, MACD, moving averages and Bollinger Bands from the daily
// closes, classifies signals, scores them, and persists the record.
func (s *TechnicalStage) Run(_ context.Context, ticker string) error {
	s.log.Info().Str("ticker", ticker).Msg("starting technical analysis")

	fact, err := rawFact(s.store, ticker)
	if err != nil {
		return err
	}
	closes := models.Closes(fact.Daily)
	if len(closes) == 0 {
		return &NoDataError{Ticker: ticker}
	}

	rsi := technical.RSI(closes, 14)
	macd, macdSignal := technical.MACD(closes)
	sma50 := technical.SMA(closes, 50)
	sma200 := technical.SMA(closes, 200)
	bbUpper, bbLower := technical.BollingerBands(closes, 20, 2)
	price := closes[len(closes)-1]

	// Signal classification and scoring follow a fixed rule order; the
	// order is part of the contract, so no rule may be reordered.
	signals := make([]string, 0, 3)
	score := 50.0

	switch {
	case rsi < 30:
		signals = append(signals, "RSI Oversold (Buy Signal)")
		score += 20 // oversold bounce potential
	case rsi > 70:
		signals = append(signals, "RSI Overbought (Sell Signal)")
		score -= 10 // overbought risk
	default:
		signals = append(signals, "RSI Neutral")
		score += 10
	}

	if price > sma200 {
		signals = append(signals, "Price above 200 SMA (Bullish Trend)")
		score += 20
	} else {
		signals = append(signals, "Price below 200 SMA (Bearish Trend)")
		score -= 20
	}

	if macd > macdSignal {
		signals = append(signals, "MACD Bullish Crossover")
		score += 10
	} else {
		signals = append(signals, "MACD Bearish")
	}

	record := &models.TechnicalRecord{
		RSI:        rsi,
		MACD:       macd,
		MACDSignal: macdSignal,
		SMA50:      sma50,
		SMA200:     sma200,
		BBUpper:    bbUpper,
		BBLower:    bbLower,
		Signals:    signals,
		Score:      clampScore(score),
	}

	s.store.Set(store.TechnicalKey(ticker), record)
	s.log.Info().Str("ticker", ticker).Float64("score", record.Score).Msg("technical analysis completed")
	return nil
}
