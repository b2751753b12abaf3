// Package sentiment provides a deterministic keyword-based polarity scorer
// for news headlines. It fills the polarity-collaborator contract consumed
// by the sentiment stage: one float in [-1, 1] per headline.
package sentiment

import "strings"

// Scorer maps a headline to a polarity in [-1, 1]. The sentiment stage takes
// one of these so tests can inject fixed polarities.
type Scorer func(headline string) float64

// keywordWeight pairs a phrase with how strongly it usually moves a
// headline's tone.
type keywordWeight struct {
	word   string
	weight float64
}

// Bullish / bearish keyword dictionaries (lowercase). Kept as ordered slices
// so the weight sums accumulate in a fixed order; float addition is not
// associative, and rescoring the same headline must reproduce the exact
// same bits.
var bullishWords = []keywordWeight{
	{"bullish", 0.7}, {"rally", 0.6}, {"surge", 0.7}, {"upbeat", 0.5},
	{"positive", 0.4}, {"growth", 0.4}, {"upgrade", 0.6}, {"outperform", 0.6},
	{"buy", 0.5}, {"strong", 0.4}, {"recovery", 0.5}, {"breakout", 0.6},
	{"record high", 0.7}, {"all-time high", 0.7}, {"beat", 0.5},
	{"exceeds", 0.5}, {"beats estimate", 0.6}, {"expansion", 0.4},
	{"profit", 0.3}, {"dividend", 0.4}, {"accumulate", 0.5},
}

var bearishWords = []keywordWeight{
	{"bearish", 0.7}, {"crash", 0.8}, {"plunge", 0.7}, {"slump", 0.6},
	{"negative", 0.4}, {"downgrade", 0.6}, {"underperform", 0.6},
	{"sell", 0.5}, {"weak", 0.4}, {"decline", 0.5}, {"loss", 0.4},
	{"selloff", 0.7}, {"fall", 0.4}, {"correction", 0.5},
	{"default", 0.7}, {"fraud", 0.8}, {"scam", 0.8}, {"investigation", 0.5},
	{"cut", 0.3}, {"miss", 0.5}, {"warning", 0.5}, {"concern", 0.3},
}

// ScoreHeadline returns the polarity of a single headline in [-1, 1].
// A headline matching no keywords scores 0 (neutral).
func ScoreHeadline(headline string) float64 {
	lower := strings.ToLower(headline)

	bullScore := 0.0
	bearScore := 0.0

	for _, kw := range bullishWords {
		if strings.Contains(lower, kw.word) {
			bullScore += kw.weight
		}
	}
	for _, kw := range bearishWords {
		if strings.Contains(lower, kw.word) {
			bearScore += kw.weight
		}
	}

	total := bullScore + bearScore
	if total == 0 {
		return 0
	}

	// Net score normalized to -1..+1.
	return (bullScore - bearScore) / total
}
