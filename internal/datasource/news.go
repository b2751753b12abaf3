package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/equisage/equisage/internal/infra"
	"github.com/equisage/equisage/pkg/models"
)

// NewsSource describes one RSS feed of financial news.
type NewsSource struct {
	Name   string
	RSSURL string
}

// DefaultNewsSources lists the configured financial news RSS feeds.
var DefaultNewsSources = []NewsSource{
	{
		Name:   "Yahoo Finance",
		RSSURL: "https://finance.yahoo.com/news/rssindex",
	},
	{
		Name:   "CNBC Markets",
		RSSURL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910258",
	},
	{
		Name:   "MarketWatch Top Stories",
		RSSURL: "https://feeds.content.dowjones.io/public/rss/mw_topstories",
	},
}

// News fetches financial headlines from RSS feeds.
type News struct {
	sources []NewsSource
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news source with the default feeds.
func NewNews(cacheTTL time.Duration) *News {
	return NewNewsWithSources(DefaultNewsSources, cacheTTL)
}

// NewNewsWithSources creates a news source with custom feeds.
func NewNewsWithSources(sources []NewsSource, cacheTTL time.Duration) *News {
	return &News{
		sources: sources,
		cache:   infra.NewCache(cacheTTL),
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  gofeed.NewParser(),
	}
}

// GetMarketNews returns recent market news from all configured sources.
func (n *News) GetMarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range n.sources {
		articles, err := n.fetchRSS(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		all = append(all, articles...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	n.cache.Set(cacheKey, all)
	return all, nil
}

// GetStockNews returns news articles mentioning a specific ticker.
func (n *News) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	cacheKey := fmt.Sprintf("news:stock:%s:%d", ticker, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	all, err := n.GetMarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(ticker)
	var filtered []models.NewsArticle
	for _, a := range all {
		content := strings.ToLower(a.Title + " " + a.Summary)
		if strings.Contains(content, needle) {
			filtered = append(filtered, a)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	n.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// fetchRSS parses an RSS feed and returns articles.
func (n *News) fetchRSS(ctx context.Context, src NewsSource) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery. Feed descriptions
// frequently embed markup that would pollute keyword matching.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
