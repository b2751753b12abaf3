// Package report renders a finished analysis report for the console.
package report

import (
	"fmt"
	"strings"

	"github.com/equisage/equisage/pkg/models"
)

// RenderText formats a report as plain text for the CLI.
func RenderText(r *models.Report) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("─", 50) + "\n")
	sb.WriteString(fmt.Sprintf("Analysis Report: %s\n", r.Ticker))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", r.Timestamp.Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("─", 50) + "\n\n")

	sb.WriteString(fmt.Sprintf("Recommendation: %s\n", r.Rating))
	sb.WriteString(fmt.Sprintf("Overall Score:  %.2f/100\n\n", r.OverallScore))

	sb.WriteString("Technical\n")
	sb.WriteString(fmt.Sprintf("  RSI: %.2f  MACD: %.4f  Signal: %.4f\n", r.Technical.RSI, r.Technical.MACD, r.Technical.MACDSignal))
	sb.WriteString(fmt.Sprintf("  SMA50: %.2f  SMA200: %.2f\n", r.Technical.SMA50, r.Technical.SMA200))
	sb.WriteString(fmt.Sprintf("  Bollinger: %.2f / %.2f\n", r.Technical.BBUpper, r.Technical.BBLower))
	for _, s := range r.Technical.Signals {
		sb.WriteString(fmt.Sprintf("  • %s\n", s))
	}
	sb.WriteString(fmt.Sprintf("  Score: %.0f\n\n", r.Technical.Score))

	sb.WriteString("Fundamental\n")
	if r.Fundamental.PERatio != nil {
		sb.WriteString(fmt.Sprintf("  P/E: %.2f\n", *r.Fundamental.PERatio))
	}
	if r.Fundamental.MarketCap != nil {
		sb.WriteString(fmt.Sprintf("  Market Cap: %s\n", formatMarketCap(*r.Fundamental.MarketCap)))
	}
	if r.Fundamental.DividendYield != nil {
		sb.WriteString(fmt.Sprintf("  Dividend Yield: %.2f%%\n", *r.Fundamental.DividendYield*100))
	}
	for _, f := range r.Fundamental.Findings {
		sb.WriteString(fmt.Sprintf("  • %s\n", f))
	}
	sb.WriteString(fmt.Sprintf("  Score: %.0f\n\n", r.Fundamental.Score))

	sb.WriteString("Sentiment\n")
	sb.WriteString(fmt.Sprintf("  Score: %.2f  Confidence: %.2f  Articles: %d\n", r.Sentiment.Score, r.Sentiment.Confidence, r.Sentiment.ArticleCount))
	for _, h := range r.Sentiment.TopHeadlines {
		sb.WriteString(fmt.Sprintf("  • [%+.2f] %s\n", h.Polarity, h.Title))
	}
	if r.Sentiment.Summary != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", r.Sentiment.Summary))
	}
	sb.WriteString("\n")

	sb.WriteString("Risk\n")
	sb.WriteString(fmt.Sprintf("  Annualized Volatility: %.2f%%\n", r.Risk.AnnualizedVolatility*100))
	sb.WriteString(fmt.Sprintf("  Max Drawdown: %.2f%%\n", r.Risk.MaxDrawdown*100))
	sb.WriteString(fmt.Sprintf("  Risk Level: %s\n\n", r.Risk.Level))

	sb.WriteString(r.Summary)
	sb.WriteString("\n")

	return sb.String()
}

// formatMarketCap renders a market cap with a readable magnitude suffix.
func formatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
