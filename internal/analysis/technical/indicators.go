// Package technical implements the technical indicator engine. All functions
// are pure, operate on a close-price series ordered oldest to newest, and
// return a defined fallback value when the series is too short for the full
// formula instead of an error.
package technical

import "math"

// RSI calculates the Relative Strength Index over the last `period` price
// changes. With fewer than period+1 points it returns a neutral 50. When the
// average loss is zero it returns 100 (pure upside, no division by zero).
func RSI(prices []float64, period int) float64 {
	if period <= 0 {
		period = 14
	}
	if len(prices) < period+1 {
		return 50.0
	}

	deltas := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		deltas[i-1] = prices[i] - prices[i-1]
	}

	var avgGain, avgLoss float64
	for _, d := range deltas[len(deltas)-period:] {
		if d > 0 {
			avgGain += d
		} else {
			avgLoss += -d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// EMA calculates the exponential moving average of the whole series, seeded
// with the arithmetic mean of the first `period` values. A series shorter
// than `period` falls back to the mean of what is there.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return mean(prices)
	}

	k := 2.0 / float64(period+1)
	ema := mean(prices[:period])
	for _, p := range prices[period:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}

// MACD calculates the MACD line (EMA12 − EMA26) and its signal line. Fewer
// than 26 points yields the (0, 0) not-enough-history sentinel. The signal
// is EMA(period 9) of the single latest MACD value, which reduces to the
// value itself through EMA's short-series fallback; the simplification is
// part of the contract.
func MACD(prices []float64) (macd, signal float64) {
	if len(prices) < 26 {
		return 0, 0
	}

	macd = EMA(prices, 12) - EMA(prices, 26)
	signal = EMA([]float64{macd}, 9)
	return macd, signal
}

// SMA calculates the simple moving average over the last `window` points,
// or over the whole series if it is shorter than the window.
func SMA(prices []float64, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < window {
		return mean(prices)
	}
	return mean(prices[len(prices)-window:])
}

// BollingerBands calculates the upper and lower Bollinger Bands over the
// last `period` points using the population standard deviation. A series
// shorter than the period collapses both bands to the series mean.
func BollingerBands(prices []float64, period int, mult float64) (upper, lower float64) {
	if period <= 0 {
		period = 20
	}
	if mult <= 0 {
		mult = 2.0
	}
	if len(prices) == 0 {
		return 0, 0
	}
	if len(prices) < period {
		m := mean(prices)
		return m, m
	}

	window := prices[len(prices)-period:]
	m := mean(window)
	sd := stddev(window, m)
	return m + mult*sd, m - mult*sd
}

// --- helpers ---

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// stddev is the population standard deviation around the given mean.
func stddev(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}
