package sentiment

import (
	"math"
	"testing"
)

func TestScoreHeadlineNeutral(t *testing.T) {
	headlines := []string{
		"",
		"Company announces quarterly results",
		"Board meeting scheduled for Tuesday",
	}
	for _, h := range headlines {
		if got := ScoreHeadline(h); got != 0 {
			t.Errorf("%q: got %v, want 0", h, got)
		}
	}
}

func TestScoreHeadlinePolarity(t *testing.T) {
	tests := []struct {
		headline string
		positive bool
	}{
		{"Shares surge after strong earnings", true},
		{"Analysts upgrade stock on growth outlook", true},
		{"Stock hits record high in broad rally", true},
		{"Shares plunge on fraud investigation", false},
		{"Broker downgrades stock, warns of weak demand", false},
		{"Markets crash in global selloff", false},
	}
	for _, tt := range tests {
		got := ScoreHeadline(tt.headline)
		if tt.positive && got <= 0 {
			t.Errorf("%q: got %v, want positive", tt.headline, got)
		}
		if !tt.positive && got >= 0 {
			t.Errorf("%q: got %v, want negative", tt.headline, got)
		}
	}
}

func TestScoreHeadlineBounded(t *testing.T) {
	headlines := []string{
		"bullish rally surge upgrade outperform buy strong breakout",
		"bearish crash plunge slump downgrade selloff fraud scam",
		"strong rally despite selloff concern",
	}
	for _, h := range headlines {
		got := ScoreHeadline(h)
		if got < -1 || got > 1 {
			t.Errorf("%q: score %v out of [-1, 1]", h, got)
		}
	}
}

func TestScoreHeadlinePureTone(t *testing.T) {
	// Only bullish matches normalize to exactly +1, only bearish to -1.
	if got := ScoreHeadline("Bullish breakout rally"); got != 1 {
		t.Errorf("pure bullish: got %v, want 1", got)
	}
	if got := ScoreHeadline("Bearish crash and selloff"); got != -1 {
		t.Errorf("pure bearish: got %v, want -1", got)
	}
}

func TestScoreHeadlineCaseInsensitive(t *testing.T) {
	a := ScoreHeadline("SHARES SURGE ON UPGRADE")
	b := ScoreHeadline("shares surge on upgrade")
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("case changed the score: %v vs %v", a, b)
	}
}

func TestScoreHeadlineStableAcrossCalls(t *testing.T) {
	// Multi-keyword headlines sum several weights; the sum must accumulate
	// in the same order every call so repeated scoring is bit-identical.
	headlines := []string{
		"bullish rally surge despite weak guidance",
		"strong rally despite selloff concern",
		"profit growth beats estimate, dividend upgrade",
	}
	for _, h := range headlines {
		want := math.Float64bits(ScoreHeadline(h))
		for i := 0; i < 10000; i++ {
			if got := math.Float64bits(ScoreHeadline(h)); got != want {
				t.Fatalf("%q: call %d produced bits %d, want %d", h, i, got, want)
			}
		}
	}
}

func TestScoreHeadlineMixed(t *testing.T) {
	// surge (0.7) vs weak (0.4): net positive but not saturated.
	got := ScoreHeadline("Shares surge despite weak guidance")
	if got <= 0 || got >= 1 {
		t.Errorf("mixed headline: got %v, want in (0, 1)", got)
	}
}
