// Package risk implements volatility and drawdown metrics over daily return
// series, plus the discrete risk-level classification used by the risk stage.
package risk

import (
	"math"

	"github.com/equisage/equisage/pkg/models"
)

// TradingDaysPerYear is the annualization factor base for daily returns.
const TradingDaysPerYear = 252

// DailyReturns computes simple percentage returns between consecutive
// closes. A series with fewer than two points yields no returns.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}

// AnnualizedVolatility is the sample standard deviation (n-1 denominator)
// of daily returns scaled by sqrt(252). Fewer than two returns give no
// deviation to measure, so the result is 0.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	sumSq := 0.0
	for _, r := range returns {
		d := r - m
		sumSq += d * d
	}
	daily := math.Sqrt(sumSq / float64(len(returns)-1))
	return daily * math.Sqrt(TradingDaysPerYear)
}

// MaxDrawdown returns the deepest peak-to-trough loss of the cumulative
// return curve, as a fraction in [-1, 0]. Zero means the curve never fell
// below a prior peak.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	cum := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := cum/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Classify maps annualized volatility to a discrete risk level:
// above 0.30 is High, above 0.15 is Medium, otherwise Low.
func Classify(annualizedVolatility float64) models.RiskLevel {
	switch {
	case annualizedVolatility > 0.30:
		return models.RiskHigh
	case annualizedVolatility > 0.15:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

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
