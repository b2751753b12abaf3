// Package agent implements the multi-stage analysis pipeline: four
// independent analysis stages collaborating through a shared fact store,
// an aggregator that merges their records into one weighted recommendation,
// and an orchestrator that sequences the run.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// Stage is one independent analysis unit. A stage reads the raw-fetch record
// from the shared store, applies its scoring rules, and writes its own
// record back under its own key. A stage failure is reported as an error and
// leaves no record behind; it never stops sibling stages.
type Stage interface {
	// Name identifies the stage in logs and progress events.
	Name() string

	// Run analyzes the ticker using the shared store.
	Run(ctx context.Context, ticker string) error
}

// NoDataError reports that a stage found no upstream record for a ticker.
type NoDataError struct {
	Ticker string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("No data found for %s", e.Ticker)
}

// ErrIncompleteData is returned by the aggregator when fewer than four stage
// records exist. It is always fatal to the run; no partial report is built.
var ErrIncompleteData = errors.New("Incomplete analysis data")

// rawFact loads the raw-fetch record for a ticker, or a NoDataError when the
// fetch stage has not written one.
func rawFact(st *store.FactStore, ticker string) (*models.RawFact, error) {
	v, ok := st.Get(store.RawKey(ticker))
	if !ok {
		return nil, &NoDataError{Ticker: ticker}
	}
	fact, ok := v.(*models.RawFact)
	if !ok || fact == nil {
		return nil, &NoDataError{Ticker: ticker}
	}
	return fact, nil
}

// clampScore bounds a stage score to [0, 100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
