package models

import "time"

// Recommendation represents the final recommendation band for a stock.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG SELL"
)

// RiskLevel classifies annualized volatility into a discrete rating.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// TechnicalRecord is the technical stage output for one ticker.
type TechnicalRecord struct {
	RSI        float64  `json:"rsi"`
	MACD       float64  `json:"macd"`
	MACDSignal float64  `json:"macd_signal"`
	SMA50      float64  `json:"sma_50"`
	SMA200     float64  `json:"sma_200"`
	BBUpper    float64  `json:"bb_upper"`
	BBLower    float64  `json:"bb_lower"`
	Signals    []string `json:"signals"`
	Score      float64  `json:"score"`
}

// FundamentalRecord is the fundamental stage output for one ticker.
// Nil pointer fields mean the underlying figure was unavailable.
type FundamentalRecord struct {
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	Score         float64  `json:"score"`
	Findings      []string `json:"findings"`
}

// ScoredHeadline pairs a headline with its sentiment polarity.
type ScoredHeadline struct {
	Title    string  `json:"title"`
	Polarity float64 `json:"polarity"`
}

// SentimentRecord is the sentiment stage output for one ticker.
type SentimentRecord struct {
	Score        float64          `json:"sentiment_score"`
	Confidence   float64          `json:"confidence"`
	ArticleCount int              `json:"article_count"`
	TopHeadlines []ScoredHeadline `json:"top_headlines,omitempty"`
	Summary      string           `json:"summary,omitempty"`
}

// RiskRecord is the risk stage output for one ticker.
type RiskRecord struct {
	AnnualizedVolatility float64   `json:"annualized_volatility"`
	MaxDrawdown          float64   `json:"max_drawdown"`
	Level                RiskLevel `json:"risk_level"`
}

// Report is the final aggregated analysis for one ticker. It is built only
// when all four stage records exist for the run.
type Report struct {
	Ticker       string             `json:"ticker"`
	Timestamp    time.Time          `json:"timestamp"`
	OverallScore float64            `json:"overall_score"`
	Rating       Recommendation     `json:"overall_rating"`
	Technical    *TechnicalRecord   `json:"technical_analysis"`
	Fundamental  *FundamentalRecord `json:"fundamental_analysis"`
	Sentiment    *SentimentRecord   `json:"sentiment_analysis"`
	Risk         *RiskRecord        `json:"risk_assessment"`
	Summary      string             `json:"summary"`
}
