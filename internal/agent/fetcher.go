package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/datasource"
	"github.com/equisage/equisage/internal/store"
)

// FetchStage acquires the raw-fetch record for a ticker through the fetch
// collaborator and seeds the shared store with it. It runs before every
// analysis stage; its failure aborts the run.
type FetchStage struct {
	store   *store.FactStore
	fetcher datasource.Fetcher
	log     zerolog.Logger
}

// NewFetchStage creates the fetch stage.
func NewFetchStage(st *store.FactStore, fetcher datasource.Fetcher, log zerolog.Logger) *FetchStage {
	return &FetchStage{
		store:   st,
		fetcher: fetcher,
		log:     log.With().Str("agent", "fetcher").Logger(),
	}
}

// Name returns the stage identifier.
func (s *FetchStage) Name() string { return "fetch" }

// Run fetches all raw data for the ticker and writes it under the raw key.
// This is the only stage that writes that key, exactly once per run.
func (s *FetchStage) Run(ctx context.Context, ticker string) error {
	s.log.Info().Str("ticker", ticker).Msg("fetching data")

	fact, err := s.fetcher.Fetch(ctx, ticker)
	if err != nil {
		s.log.Error().Str("ticker", ticker).Err(err).Msg("fetch failed")
		return fmt.Errorf("Data fetching failed: %w", err)
	}

	s.store.Set(store.RawKey(ticker), fact)
	s.log.Info().Str("ticker", ticker).Msg("data fetched and saved")
	return nil
}
