package domain

import "time"

// Category is the closed set of topics the relay recognizes.
type Category string

const (
	CategoryCrypto      Category = "crypto"
	CategoryMacro       Category = "macro"
	CategoryEquities    Category = "equities"
	CategoryForex       Category = "forex"
	CategoryCommodities Category = "commodities"
)

// CategoryPriority lists every recognized tag in formatter priority order.
// The first tag of an article present in this list selects its template.
var CategoryPriority = []Category{
	CategoryCrypto,
	CategoryMacro,
	CategoryEquities,
	CategoryForex,
	CategoryCommodities,
}

// Article is one candidate news item fetched from an upstream feed.
// Instances are created by a source fetch, read-only downstream, and
// discarded after delivery or rejection; only the fingerprint persists.
type Article struct {
	Fingerprint  string
	SourceID     string
	SourceWeight float64
	Title        string
	URL          string
	Summary      string
	PublishedAt  time.Time
	Categories   []Category
}

// PrimaryCategory resolves the article's template category: the first
// entry of CategoryPriority the article is tagged with.
func (a Article) PrimaryCategory() Category {
	tagged := make(map[Category]bool, len(a.Categories))
	for _, c := range a.Categories {
		tagged[c] = true
	}
	for _, c := range CategoryPriority {
		if tagged[c] {
			return c
		}
	}
	if len(a.Categories) > 0 {
		return a.Categories[0]
	}
	return CategoryCrypto
}

// SeenEntry is one record of the deduplication ledger.
type SeenEntry struct {
	Fingerprint string    `json:"fingerprint"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}
