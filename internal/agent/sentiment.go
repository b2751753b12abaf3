package agent

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/analysis/sentiment"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// SentimentStage scores news headlines through a polarity scorer and maps
// the average polarity onto the 0–100 scale.
type SentimentStage struct {
	store  *store.FactStore
	scorer sentiment.Scorer
	log    zerolog.Logger
}

// NewSentimentStage creates the sentiment stage. A nil scorer falls back to
// the built-in keyword scorer.
func NewSentimentStage(st *store.FactStore, scorer sentiment.Scorer, log zerolog.Logger) *SentimentStage {
	if scorer == nil {
		scorer = sentiment.ScoreHeadline
	}
	return &SentimentStage{
		store:  st,
		scorer: scorer,
		log:    log.With().Str("agent", "sentiment").Logger(),
	}
}

// Name returns the stage identifier.
func (s *SentimentStage) Name() string { return "sentiment" }

// Run averages headline polarity across all non-empty titles. With no news
// at all it persists the fixed neutral fallback record.
func (s *SentimentStage) Run(_ context.Context, ticker string) error {
	s.log.Info().Str("ticker", ticker).Msg("starting sentiment analysis")

	fact, err := rawFact(s.store, ticker)
	if err != nil {
		return err
	}

	if len(fact.News) == 0 {
		record := &models.SentimentRecord{
			Score:      50,
			Confidence: 0,
			Summary:    "No news found",
		}
		s.store.Set(store.SentimentKey(ticker), record)
		s.log.Info().Str("ticker", ticker).Msg("no news, neutral sentiment recorded")
		return nil
	}

	totalPolarity := 0.0
	count := 0
	var headlines []models.ScoredHeadline

	for _, item := range fact.News {
		if item.Title == "" {
			continue
		}
		polarity := s.scorer(item.Title)
		totalPolarity += polarity
		count++
		headlines = append(headlines, models.ScoredHeadline{
			Title:    item.Title,
			Polarity: polarity,
		})
	}

	avgPolarity := 0.0
	if count > 0 {
		avgPolarity = totalPolarity / float64(count)
	}

	if len(headlines) > 3 {
		headlines = headlines[:3]
	}

	record := &models.SentimentRecord{
		// Map polarity (-1..1) to score (0..100): -1 → 0, 0 → 50, 1 → 100.
		Score:        (avgPolarity + 1) * 50,
		Confidence:   math.Min(1.0, float64(count)*0.1),
		ArticleCount: count,
		TopHeadlines: headlines,
	}

	s.store.Set(store.SentimentKey(ticker), record)
	s.log.Info().
		Str("ticker", ticker).
		Float64("score", record.Score).
		Int("articles", count).
		Msg("sentiment analysis completed")
	return nil
}
