package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsrelay/internal/domain"
	"newsrelay/internal/scanner"
)

const samplePage = `<!DOCTYPE html>
<html><body>
  <article>
    <a href="/markets/gold-hits-high">Gold hits fresh high</a>
    <p>Bullion climbed as yields fell.</p>
    <time datetime="2025-08-04T09:00:00Z">Aug 4</time>
  </article>
  <article>
    <a href="https://other.example.com/fed-holds">Fed holds rates steady</a>
    <p>No change at the August meeting.</p>
  </article>
  <article>
    <p>Card with no headline link.</p>
  </article>
</body></html>`

func TestSiteScannerExtractsArticles(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	sc := NewSiteScanner(server.Client())
	articles, outcome := sc.Scan(context.Background(), scanner.Request{SourceID: "portal", URL: server.URL})
	if outcome.Status != domain.FetchSuccess {
		t.Fatalf("outcome = %s, want success", outcome.Status)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles (card without link skipped), got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Gold hits fresh high" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.URL != server.URL+"/markets/gold-hits-high" {
		t.Fatalf("relative link not resolved: %s", first.URL)
	}
	if first.Summary != "Bullion climbed as yields fell." {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}
	want := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("published at %v, want %v", first.PublishedAt, want)
	}

	if articles[1].URL != "https://other.example.com/fed-holds" {
		t.Fatalf("absolute link rewritten: %s", articles[1].URL)
	}
}

func TestSiteScannerSelectorOverrides(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <div class="card"><h2>Oil slips on supply news</h2><a class="more" href="/oil">read</a></div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	sc := NewSiteScanner(server.Client())
	articles, outcome := sc.Scan(context.Background(), scanner.Request{
		SourceID: "portal",
		URL:      server.URL,
		Options: map[string]string{
			"item":  "div.card",
			"title": "h2",
			"link":  "a.more",
		},
	})
	if outcome.Status != domain.FetchSuccess {
		t.Fatalf("outcome = %s, want success", outcome.Status)
	}
	if len(articles) != 1 || articles[0].Title != "Oil slips on supply news" {
		t.Fatalf("selector overrides not applied: %+v", articles)
	}
}

func TestSiteScannerEmptyPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer server.Close()

	sc := NewSiteScanner(server.Client())
	articles, outcome := sc.Scan(context.Background(), scanner.Request{SourceID: "portal", URL: server.URL})
	if outcome.Status != domain.FetchEmptyOk {
		t.Fatalf("outcome = %s, want empty_ok", outcome.Status)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(articles))
	}
}

func TestSiteScannerServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	sc := NewSiteScanner(server.Client())
	_, outcome := sc.Scan(context.Background(), scanner.Request{SourceID: "portal", URL: server.URL})
	if outcome.Status != domain.FetchTransient {
		t.Fatalf("outcome = %s, want transient_error", outcome.Status)
	}
	if !strings.HasPrefix(outcome.Kind, "http_") {
		t.Fatalf("kind = %s, want http_ prefix", outcome.Kind)
	}
}
