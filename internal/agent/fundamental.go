package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// FundamentalStage scores company valuation figures. Every rule skips a
// missing figure entirely; absence is "insufficient data", never zero.
type FundamentalStage struct {
	store *store.FactStore
	log   zerolog.Logger
}

// NewFundamentalStage creates the fundamental analysis stage.
func NewFundamentalStage(st *store.FactStore, log zerolog.Logger) *FundamentalStage {
	return &FundamentalStage{
		store: st,
		log:   log.With().Str("agent", "fundamental").Logger(),
	}
}

// Name returns the stage identifier.
func (s *FundamentalStage) Name() string { return "fundamental" }

// Run applies the valuation rule table in order and persists the record.
func (s *FundamentalStage) Run(_ context.Context, ticker string) error {
	s.log.Info().Str("ticker", ticker).Msg("starting fundamental analysis")

	fact, err := rawFact(s.store, ticker)
	if err != nil {
		return err
	}
	fund := fact.Fundamentals

	score := 50.0
	var findings []string

	// P/E valuation.
	if fund.TrailingPE != nil {
		switch pe := *fund.TrailingPE; {
		case pe < 15:
			score += 15
			findings = append(findings, "Undervalued P/E ratio (< 15)")
		case pe > 30:
			score -= 10
			findings = append(findings, "High P/E ratio (> 30)")
		default:
			score += 5
			findings = append(findings, "Moderate P/E ratio")
		}
	}

	// Growth potential: forward earnings expected above trailing.
	if fund.TrailingPE != nil && fund.ForwardPE != nil && *fund.ForwardPE < *fund.TrailingPE {
		score += 10
		findings = append(findings, "Forward P/E lower than Trailing P/E (Expected Growth)")
	}

	// Dividend.
	if fund.DividendYield != nil && *fund.DividendYield > 0.02 {
		score += 10
		findings = append(findings, fmt.Sprintf("Good Dividend Yield (%.2f%%)", *fund.DividendYield*100))
	}

	// Market cap.
	if fund.MarketCap != nil && *fund.MarketCap > 10_000_000_000 {
		score += 5
		findings = append(findings, "Large Cap Company (Stability)")
	}

	record := &models.FundamentalRecord{
		PERatio:       fund.TrailingPE,
		MarketCap:     fund.MarketCap,
		DividendYield: fund.DividendYield,
		Score:         clampScore(score),
		Findings:      findings,
	}

	s.store.Set(store.FundamentalKey(ticker), record)
	s.log.Info().Str("ticker", ticker).Float64("score", record.Score).Msg("fundamental analysis completed")
	return nil
}
