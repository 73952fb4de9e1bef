// Package filter implements the rule-based topical relevance filter.
package filter

import (
	"strings"

	"newsrelay/internal/domain"
)

// defaultKeywords enumerates the per-category matcher vocabulary. Matching
// is plain substring presence: precision over recall, so a quiet channel
// beats a spammy one.
var defaultKeywords = map[domain.Category][]string{
	domain.CategoryCrypto: {
		"bitcoin", "btc", "ethereum", "eth", "crypto", "cryptocurrency",
		"blockchain", "defi", "nft", "stablecoin", "altcoin",
		"binance", "coinbase", "solana", "cardano", "dogecoin", "ripple", "xrp",
	},
	domain.CategoryMacro: {
		"federal reserve", "fed", "interest rate", "inflation", "gdp",
		"unemployment", "jobs report", "cpi", "ppi", "retail sales",
		"recession", "monetary policy", "central bank", "quantitative easing",
		"imf", "world bank", "tariff", "pmi", "manufacturing",
	},
	domain.CategoryEquities: {
		"stock", "shares", "equity", "nasdaq", "nyse", "dow jones", "s&p 500",
		"earnings", "dividend", "ipo", "market cap", "buyback",
		"apple", "microsoft", "tesla", "amazon", "nvidia", "berkshire",
	},
	domain.CategoryForex: {
		"dollar", "euro", "yen", "pound", "currency", "forex",
		"exchange rate", "devaluation",
	},
	domain.CategoryCommodities: {
		"oil", "crude", "gold", "silver", "copper", "wheat", "corn",
		"natural gas", "commodity", "opec",
	},
}

// Filter classifies articles against enumerated keyword sets per category.
// It is deterministic and pure: no network, no shared state.
type Filter struct {
	keywords map[domain.Category][]string
}

// New builds a filter from the built-in vocabulary plus any configured
// extra keywords. Unknown category names in extra are ignored.
func New(extra map[string][]string) *Filter {
	keywords := make(map[domain.Category][]string, len(defaultKeywords))
	for cat, words := range defaultKeywords {
		keywords[cat] = append([]string(nil), words...)
	}
	for name, words := range extra {
		cat := domain.Category(name)
		if _, known := keywords[cat]; !known {
			continue
		}
		for _, w := range words {
			keywords[cat] = append(keywords[cat], strings.ToLower(strings.TrimSpace(w)))
		}
	}
	return &Filter{keywords: keywords}
}

// Classify returns the category tags matched by the article's title and
// summary, in priority order. No match means reject.
func (f *Filter) Classify(article domain.Article) ([]domain.Category, bool) {
	content := strings.ToLower(article.Title + " " + article.Summary)

	var tags []domain.Category
	for _, cat := range domain.CategoryPriority {
		for _, keyword := range f.keywords[cat] {
			if keyword != "" && strings.Contains(content, keyword) {
				tags = append(tags, cat)
				break
			}
		}
	}

	return tags, len(tags) > 0
}
