package agent

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// Stage weights for the overall score. Risk enters as a quality score, so a
// low-risk stock pulls the blend up.
const (
	weightTechnical   = 0.30
	weightFundamental = 0.40
	weightSentiment   = 0.15
	weightRisk        = 0.15
)

// Aggregator merges the four stage records into the final weighted report.
// It refuses to build anything from a partial set of records.
type Aggregator struct {
	store *store.FactStore
	log   zerolog.Logger
}

// NewAggregator creates the report aggregator.
func NewAggregator(st *store.FactStore, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		store: st,
		log:   log.With().Str("agent", "aggregator").Logger(),
	}
}

// BuildReport reads all four stage records for the ticker, blends their
// scores, derives the recommendation band, and persists the report.
// If any record is absent it fails with ErrIncompleteData.
func (a *Aggregator) BuildReport(ticker string) (*models.Report, error) {
	a.log.Info().Str("ticker", ticker).Msg("generating report")

	technical, ok1 := getRecord[*models.TechnicalRecord](a.store, store.TechnicalKey(ticker))
	fundamental, ok2 := getRecord[*models.FundamentalRecord](a.store, store.FundamentalKey(ticker))
	sentiment, ok3 := getRecord[*models.SentimentRecord](a.store, store.SentimentKey(ticker))
	riskRec, ok4 := getRecord[*models.RiskRecord](a.store, store.RiskKey(ticker))
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, ErrIncompleteData
	}

	overall := weightTechnical*technical.Score +
		weightFundamental*fundamental.Score +
		weightSentiment*sentiment.Score +
		weightRisk*riskQuality(riskRec.Level)
	overall = math.Round(overall*100) / 100

	report := &models.Report{
		Ticker:       ticker,
		Timestamp:    time.Now(),
		OverallScore: overall,
		Rating:       recommendationFor(overall),
		Technical:    technical,
		Fundamental:  fundamental,
		Sentiment:    sentiment,
		Risk:         riskRec,
	}
	report.Summary = buildSummary(report)

	a.store.Set(store.ReportKey(ticker), report)
	a.log.Info().
		Str("ticker", ticker).
		Float64("score", overall).
		Str("rating", string(report.Rating)).
		Msg("report generated")
	return report, nil
}

// riskQuality inverts the discrete risk level into a quality score for
// blending: safer stocks score higher.
func riskQuality(level models.RiskLevel) float64 {
	switch level {
	case models.RiskHigh:
		return 30
	case models.RiskMedium:
		return 60
	default:
		return 100
	}
}

// recommendationFor maps the overall score to a band. The rules are applied
// in override order: the narrower threshold wins when both match, so 86
// yields STRONG BUY, not BUY.
func recommendationFor(score float64) models.Recommendation {
	rec := models.Hold
	if score > 70 {
		rec = models.Buy
	}
	if score > 85 {
		rec = models.StrongBuy
	}
	if score < 40 {
		rec = models.Sell
	}
	if score < 25 {
		rec = models.StrongSell
	}
	return rec
}

// buildSummary composes the human-readable report summary.
func buildSummary(r *models.Report) string {
	firstSignal := ""
	if len(r.Technical.Signals) > 0 {
		firstSignal = r.Technical.Signals[0]
	}
	firstFinding := ""
	if len(r.Fundamental.Findings) > 0 {
		firstFinding = r.Fundamental.Findings[0]
	}
	pe := "n/a"
	if r.Fundamental.PERatio != nil {
		pe = fmt.Sprintf("%.2f", *r.Fundamental.PERatio)
	}

	return fmt.Sprintf(
		"Investment Report for %s:\n"+
			"Recommendation: %s (Score: %.2f/100)\n"+
			"Risk Level: %s\n"+
			"Technical Outlook: RSI at %.2f, %s\n"+
			"Fundamental: P/E %s, %s\n"+
			"Sentiment: Score %.2f based on %d articles.",
		r.Ticker, r.Rating, r.OverallScore, r.Risk.Level,
		r.Technical.RSI, firstSignal, pe, firstFinding,
		r.Sentiment.Score, r.Sentiment.ArticleCount,
	)
}

// getRecord fetches and type-asserts a stage record from the store.
func getRecord[T any](st *store.FactStore, key string) (T, bool) {
	var zero T
	v, ok := st.Get(key)
	if !ok {
		return zero, false
	}
	rec, ok := v.(T)
	if !ok {
		return zero, false
	}
	return rec, true
}
