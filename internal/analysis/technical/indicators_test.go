package technical

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// ascending returns n closes rising by step from start.
func ascending(start, step float64, n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = start + step*float64(i)
	}
	return prices
}

func TestRSINeutralOnShortSeries(t *testing.T) {
	for _, n := range []int{0, 1, 5, 14} {
		prices := ascending(100, 1, n)
		if got := RSI(prices, 14); got != 50.0 {
			t.Errorf("len=%d: got %v, want neutral 50", n, got)
		}
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	prices := ascending(100, 1, 30)
	if got := RSI(prices, 14); got != 100.0 {
		t.Errorf("got %v, want 100 for pure upside", got)
	}
}

func TestRSIAllLossesNearZero(t *testing.T) {
	prices := ascending(100, -1, 30)
	got := RSI(prices, 14)
	if !almostEqual(got, 0, 1e-9) {
		t.Errorf("got %v, want ~0 for pure downside", got)
	}
}

func TestRSIBalancedIsFifty(t *testing.T) {
	// Alternating +1/-1 gives equal average gain and loss.
	prices := make([]float64, 31)
	prices[0] = 100
	for i := 1; i < len(prices); i++ {
		if i%2 == 1 {
			prices[i] = prices[i-1] + 1
		} else {
			prices[i] = prices[i-1] - 1
		}
	}
	got := RSI(prices, 14)
	if !almostEqual(got, 50, 1e-9) {
		t.Errorf("got %v, want 50 for balanced series", got)
	}
}

func TestRSIBounded(t *testing.T) {
	series := [][]float64{
		ascending(50, 0.5, 40),
		ascending(200, -2, 40),
		{100, 101, 99, 103, 97, 105, 95, 104, 96, 102, 98, 100, 101, 99, 100, 102},
	}
	for i, prices := range series {
		got := RSI(prices, 14)
		if got < 0 || got > 100 {
			t.Errorf("series %d: RSI %v out of [0, 100]", i, got)
		}
	}
}

func TestRSIDefaultPeriod(t *testing.T) {
	prices := ascending(100, 1, 30)
	if got, want := RSI(prices, 0), RSI(prices, 14); got != want {
		t.Errorf("period<=0 should default to 14: got %v, want %v", got, want)
	}
}

func TestEMA(t *testing.T) {
	if got := EMA(nil, 9); got != 0 {
		t.Errorf("empty series: got %v, want 0", got)
	}

	// Shorter than period falls back to mean.
	if got := EMA([]float64{10, 20}, 9); got != 15 {
		t.Errorf("short series: got %v, want mean 15", got)
	}

	// Constant series stays at the constant.
	if got := EMA([]float64{5, 5, 5, 5, 5, 5}, 3); got != 5 {
		t.Errorf("constant series: got %v, want 5", got)
	}

	// A rising series ends between the seed mean and the last price.
	prices := ascending(100, 1, 20)
	got := EMA(prices, 12)
	if got <= mean(prices[:12]) || got >= prices[len(prices)-1] {
		t.Errorf("EMA %v not between seed mean and last price", got)
	}
}

func TestMACDShortSeriesSentinel(t *testing.T) {
	macd, signal := MACD(ascending(100, 1, 25))
	if macd != 0 || signal != 0 {
		t.Errorf("got (%v, %v), want (0, 0) below 26 points", macd, signal)
	}
}

func TestMACDSignalEqualsMACD(t *testing.T) {
	// The signal is the EMA of a single MACD value, so they coincide.
	macd, signal := MACD(ascending(100, 1, 60))
	if macd != signal {
		t.Errorf("signal %v differs from macd %v", signal, macd)
	}
}

func TestMACDSignOnTrends(t *testing.T) {
	if macd, _ := MACD(ascending(100, 1, 60)); macd <= 0 {
		t.Errorf("uptrend MACD %v, want > 0", macd)
	}
	if macd, _ := MACD(ascending(200, -1, 60)); macd >= 0 {
		t.Errorf("downtrend MACD %v, want < 0", macd)
	}
}

func TestSMA(t *testing.T) {
	if got := SMA(nil, 50); got != 0 {
		t.Errorf("empty series: got %v, want 0", got)
	}

	// Shorter than window: mean of everything.
	if got := SMA([]float64{1, 2, 3}, 50); got != 2 {
		t.Errorf("short series: got %v, want 2", got)
	}

	// Tail window only.
	prices := []float64{1, 1, 1, 10, 20, 30}
	if got := SMA(prices, 3); got != 20 {
		t.Errorf("got %v, want tail mean 20", got)
	}
}

func TestBollingerBands(t *testing.T) {
	upper, lower := BollingerBands(nil, 20, 2)
	if upper != 0 || lower != 0 {
		t.Errorf("empty series: got (%v, %v), want (0, 0)", upper, lower)
	}

	// Short series collapses to the mean.
	upper, lower = BollingerBands([]float64{10, 20}, 20, 2)
	if upper != 15 || lower != 15 {
		t.Errorf("short series: got (%v, %v), want bands at mean 15", upper, lower)
	}

	// Constant window has zero width.
	constant := make([]float64, 25)
	for i := range constant {
		constant[i] = 42
	}
	upper, lower = BollingerBands(constant, 20, 2)
	if upper != 42 || lower != 42 {
		t.Errorf("constant series: got (%v, %v), want both 42", upper, lower)
	}

	// Bands bracket the window mean symmetrically.
	prices := ascending(100, 1, 40)
	upper, lower = BollingerBands(prices, 20, 2)
	m := mean(prices[len(prices)-20:])
	if !almostEqual(upper-m, m-lower, 1e-9) {
		t.Errorf("bands not symmetric around mean: upper %v, lower %v, mean %v", upper, lower, m)
	}
	if upper <= lower {
		t.Errorf("upper %v not above lower %v", upper, lower)
	}
}

func TestBollingerKnownValues(t *testing.T) {
	// Window {2, 4, 4, 4, 5, 5, 7, 9}: mean 5, population stddev 2.
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	upper, lower := BollingerBands(prices, 8, 2)
	if !almostEqual(upper, 9, 1e-9) || !almostEqual(lower, 1, 1e-9) {
		t.Errorf("got (%v, %v), want (9, 1)", upper, lower)
	}
}
