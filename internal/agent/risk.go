package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/analysis/risk"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// RiskStage measures volatility and drawdown over the daily close series.
type RiskStage struct {
	store *store.FactStore
	log   zerolog.Logger
}

// NewRiskStage creates the risk assessment stage.
func NewRiskStage(st *store.FactStore, log zerolog.Logger) *RiskStage {
	return &RiskStage{
		store: st,
		log:   log.With().Str("agent", "risk").Logger(),
	}
}

// Name returns the stage identifier.
func (s *RiskStage) Name() string { return "risk" }

// Run computes annualized volatility and max drawdown from daily returns,
// classifies the risk level, and persists the record.
func (s *RiskStage) Run(_ context.Context, ticker string) error {
	s.log.Info().Str("ticker", ticker).Msg("starting risk assessment")

	fact, err := rawFact(s.store, ticker)
	if err != nil {
		return err
	}
	closes := models.Closes(fact.Daily)
	if len(closes) == 0 {
		return &NoDataError{Ticker: ticker}
	}

	returns := risk.DailyReturns(closes)
	vol := risk.AnnualizedVolatility(returns)

	record := &models.RiskRecord{
		AnnualizedVolatility: vol,
		MaxDrawdown:          risk.MaxDrawdown(returns),
		Level:                risk.Classify(vol),
	}

	s.store.Set(store.RiskKey(ticker), record)
	s.log.Info().
		Str("ticker", ticker).
		Float64("volatility", record.AnnualizedVolatility).
		Str("level", string(record.Level)).
		Msg("risk assessment completed")
	return nil
}
