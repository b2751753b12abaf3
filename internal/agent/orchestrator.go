package agent

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/equisage/equisage/internal/analysis/sentiment"
	"github.com/equisage/equisage/internal/datasource"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// RunState is the orchestrator's position in the analysis workflow.
type RunState string

const (
	StateIdle        RunState = "idle"
	StateFetching    RunState = "fetching"
	StateAnalyzing   RunState = "analyzing"
	StateAggregating RunState = "aggregating"
	StateDone        RunState = "done"
	StateError       RunState = "error"
)

// ProgressEvent describes one step of a running analysis. The API layer
// streams these to websocket clients.
type ProgressEvent struct {
	Ticker string   `json:"ticker"`
	State  RunState `json:"state"`
	Stage  string   `json:"stage,omitempty"`
	Status string   `json:"status"` // "started", "completed", "failed"
	Error  string   `json:"error,omitempty"`
}

// ProgressFunc receives progress events during a run.
type ProgressFunc func(ProgressEvent)

// Orchestrator sequences the analysis workflow for one ticker:
// fetch → {technical, fundamental, sentiment, risk} → aggregate.
//
// The stages are best-effort: one stage's failure never stops its siblings.
// The aggregator is fail-closed: a single missing record fails the run.
type Orchestrator struct {
	mu    sync.RWMutex
	state RunState

	store      *store.FactStore
	fetch      *FetchStage
	stages     []Stage
	aggregator *Aggregator
	parallel   bool
	progress   ProgressFunc
	log        zerolog.Logger
}

// OrchestratorConfig holds configuration for creating an Orchestrator.
type OrchestratorConfig struct {
	Store   *store.FactStore
	Fetcher datasource.Fetcher
	// Scorer overrides the headline polarity scorer; nil uses the built-in
	// keyword scorer.
	Scorer sentiment.Scorer
	// Parallel runs the four analysis stages concurrently. They are
	// mutually independent and write disjoint keys, so order does not
	// affect the result.
	Parallel bool
	Logger   zerolog.Logger
}

// NewOrchestrator wires the full pipeline over one shared store.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	st := cfg.Store
	if st == nil {
		st = store.New()
	}
	log := cfg.Logger

	return &Orchestrator{
		state: StateIdle,
		store: st,
		fetch: NewFetchStage(st, cfg.Fetcher, log),
		stages: []Stage{
			NewTechnicalStage(st, log),
			NewFundamentalStage(st, log),
			NewSentimentStage(st, cfg.Scorer, log),
			NewRiskStage(st, log),
		},
		aggregator: NewAggregator(st, log),
		parallel:   cfg.Parallel,
		log:        log.With().Str("agent", "orchestrator").Logger(),
	}
}

// Store returns the shared fact store backing this orchestrator.
func (o *Orchestrator) Store() *store.FactStore { return o.store }

// State returns the current workflow state.
func (o *Orchestrator) State() RunState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// OnProgress registers a callback for progress events. Pass nil to remove.
func (o *Orchestrator) OnProgress(fn ProgressFunc) {
	o.mu.Lock()
	o.progress = fn
	o.mu.Unlock()
}

// RunAnalysis executes the full workflow for a ticker and returns the final
// report. Fetch failure aborts immediately; any stage failure surfaces at
// aggregation as ErrIncompleteData. Callers always get either a complete
// report or an error, never a partial report.
func (o *Orchestrator) RunAnalysis(ctx context.Context, ticker string) (*models.Report, error) {
	o.log.Info().Str("ticker", ticker).Msg("starting analysis workflow")

	// 1. Fetch. Nothing runs without raw data.
	o.setState(StateFetching)
	o.emit(ProgressEvent{Ticker: ticker, State: StateFetching, Stage: o.fetch.Name(), Status: "started"})
	if err := o.fetch.Run(ctx, ticker); err != nil {
		o.setState(StateError)
		o.emit(ProgressEvent{Ticker: ticker, State: StateError, Stage: o.fetch.Name(), Status: "failed", Error: err.Error()})
		return nil, err
	}
	o.emit(ProgressEvent{Ticker: ticker, State: StateFetching, Stage: o.fetch.Name(), Status: "completed"})

	// 2. Analysis stages, best-effort. Failures are logged and remembered
	// but siblings still run; the aggregator decides the run's fate.
	o.setState(StateAnalyzing)
	if o.parallel {
		o.runParallel(ctx, ticker)
	} else {
		o.runSequential(ctx, ticker)
	}

	// 3. Aggregate, fail-closed.
	o.setState(StateAggregating)
	o.emit(ProgressEvent{Ticker: ticker, State: StateAggregating, Stage: "aggregator", Status: "started"})
	report, err := o.aggregator.BuildReport(ticker)
	if err != nil {
		o.setState(StateError)
		o.emit(ProgressEvent{Ticker: ticker, State: StateError, Stage: "aggregator", Status: "failed", Error: err.Error()})
		return nil, err
	}
	o.emit(ProgressEvent{Ticker: ticker, State: StateAggregating, Stage: "aggregator", Status: "completed"})

	o.setState(StateDone)
	o.emit(ProgressEvent{Ticker: ticker, State: StateDone, Status: "completed"})
	o.log.Info().Str("ticker", ticker).Str("rating", string(report.Rating)).Msg("analysis workflow completed")
	return report, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, ticker string) {
	for _, stage := range o.stages {
		o.runStage(ctx, stage, ticker)
	}
}

// runParallel fans the stages out on goroutines. Safe because each stage
// reads the raw record through the store's atomic Get and writes only its
// own key.
func (o *Orchestrator) runParallel(ctx context.Context, ticker string) {
	g, gctx := errgroup.WithContext(ctx)
	for _, stage := range o.stages {
		stage := stage
		g.Go(func() error {
			o.runStage(gctx, stage, ticker)
			return nil // stage failures are non-fatal here
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) runStage(ctx context.Context, stage Stage, ticker string) {
	o.emit(ProgressEvent{Ticker: ticker, State: StateAnalyzing, Stage: stage.Name(), Status: "started"})
	if err := stage.Run(ctx, ticker); err != nil {
		o.log.Warn().Str("ticker", ticker).Str("stage", stage.Name()).Err(err).Msg("stage failed")
		o.emit(ProgressEvent{Ticker: ticker, State: StateAnalyzing, Stage: stage.Name(), Status: "failed", Error: err.Error()})
		return
	}
	o.emit(ProgressEvent{Ticker: ticker, State: StateAnalyzing, Stage: stage.Name(), Status: "completed"})
}

func (o *Orchestrator) setState(s RunState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) emit(ev ProgressEvent) {
	o.mu.RLock()
	fn := o.progress
	o.mu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}
