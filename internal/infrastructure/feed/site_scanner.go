package feed

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsrelay/internal/domain"
	"newsrelay/internal/scanner"
)

// Default selectors target the common "list of article cards" layout used
// by financial news portals. Sources override them via options.
const (
	defaultItemSelector    = "article"
	defaultTitleSelector   = "a"
	defaultLinkSelector    = "a"
	defaultSummarySelector = "p"
	defaultTimeSelector    = "time"
)

// SiteScanner scrapes a news listing page for sources that expose no feed.
type SiteScanner struct {
	client *http.Client
	now    func() time.Time
}

var _ scanner.Scanner = (*SiteScanner)(nil)

// NewSiteScanner wires an HTTP client; nil falls back to a 20s-timeout default.
func NewSiteScanner(client *http.Client) *SiteScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &SiteScanner{client: client, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (s *SiteScanner) Name() string {
	return "site"
}

// Scan downloads the listing page and extracts one article per item node.
// Items missing a title or link are skipped.
func (s *SiteScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, domain.FetchOutcome) {
	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, domain.PermanentOutcome("bad_url", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, domain.PermanentOutcome("bad_url", err)
	}
	httpReq.Header.Set("User-Agent", "newsrelay/1.0")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.ParseOutcome(err)
	}

	var articles []domain.Article
	doc.Find(option(req, "item", defaultItemSelector)).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(option(req, "title", defaultTitleSelector)).First().Text())
		href, _ := item.Find(option(req, "link", defaultLinkSelector)).First().Attr("href")
		link := resolveLink(base, href)
		if title == "" || link == "" {
			return
		}

		articles = append(articles, domain.Article{
			Fingerprint: domain.Fingerprint(title, link),
			SourceID:    req.SourceID,
			Title:       title,
			URL:         link,
			Summary:     cleanSummary(item.Find(option(req, "summary", defaultSummarySelector)).First().Text()),
			PublishedAt: s.extractTime(req, item),
		})
	})

	return articles, domain.SuccessOutcome(len(articles))
}

func (s *SiteScanner) extractTime(req scanner.Request, item *goquery.Selection) time.Time {
	node := item.Find(option(req, "time", defaultTimeSelector)).First()
	if raw, ok := node.Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return parsed
		}
	}
	return parsePubDate(node.Text(), s.now)
}

func option(req scanner.Request, key, fallback string) string {
	if v, ok := req.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
