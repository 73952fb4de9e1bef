package feed

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"newsrelay/internal/domain"
	"newsrelay/internal/scanner"
)

const maxSummaryLen = 300

var htmlTagExpr = regexp.MustCompile(`<[^>]+>`)

// RSSScanner fetches and parses syndication XML into candidate articles.
// Malformed individual entries are skipped, not fatal.
type RSSScanner struct {
	client *http.Client
	now    func() time.Time
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires an HTTP client; nil falls back to a 20s-timeout default.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

type rssFeed struct {
	Channel struct {
		Title string    `xml:"title"`
		Item  []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Scan performs one bounded-time request and parses the response. It never
// touches shared state; everything it learns is in the returned values.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, domain.FetchOutcome) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, domain.PermanentOutcome("bad_url", err)
	}
	httpReq.Header.Set("User-Agent", "newsrelay/1.0")
	httpReq.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, application/atom+xml")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}

	var parsed rssFeed
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, domain.ParseOutcome(err)
	}

	articles := make([]domain.Article, 0, len(parsed.Channel.Item))
	for _, item := range parsed.Channel.Item {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		articles = append(articles, domain.Article{
			Fingerprint: domain.Fingerprint(title, link),
			SourceID:    req.SourceID,
			Title:       title,
			URL:         link,
			Summary:     cleanSummary(item.Description),
			PublishedAt: parsePubDate(item.PubDate, s.now),
		})
	}

	return articles, domain.SuccessOutcome(len(articles))
}

// parsePubDate tries the date layouts seen across real feeds and falls
// back to the fetch time when none match.
func parsePubDate(raw string, now func() time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now().UTC()
	}
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return now().UTC()
}

func cleanSummary(raw string) string {
	text := htmlTagExpr.ReplaceAllString(raw, "")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > maxSummaryLen {
		text = string(runes[:maxSummaryLen]) + "..."
	}
	return text
}
