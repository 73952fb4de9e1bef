package domain

import "testing"

func TestFingerprintNormalization(t *testing.T) {
	t.Parallel()

	base := Fingerprint("Bitcoin Hits New High", "https://example.com/news/btc-high")

	variants := []struct {
		name  string
		title string
		url   string
	}{
		{"case", "BITCOIN HITS NEW HIGH", "https://EXAMPLE.com/news/btc-high"},
		{"whitespace", "  Bitcoin   Hits\tNew High ", "https://example.com/news/btc-high"},
		{"tracking params", "Bitcoin Hits New High", "https://example.com/news/btc-high?utm_source=rss&utm_medium=feed"},
		{"fragment", "Bitcoin Hits New High", "https://example.com/news/btc-high#latest"},
		{"trailing slash", "Bitcoin Hits New High", "https://example.com/news/btc-high/"},
	}

	for _, tc := range variants {
		if got := Fingerprint(tc.title, tc.url); got != base {
			t.Fatalf("%s: fingerprint diverged: %s != %s", tc.name, got, base)
		}
	}
}

func TestFingerprintDistinguishesArticles(t *testing.T) {
	t.Parallel()

	a := Fingerprint("Bitcoin Hits New High", "https://example.com/a")
	b := Fingerprint("Ethereum Hits New High", "https://example.com/a")
	c := Fingerprint("Bitcoin Hits New High", "https://example.com/b")

	if a == b || a == c {
		t.Fatalf("distinct articles produced equal fingerprints")
	}
}

func TestCanonicalURLKeepsMeaningfulQuery(t *testing.T) {
	t.Parallel()

	got := CanonicalURL("https://example.com/news?id=42&utm_campaign=x")
	want := "https://example.com/news?id=42"
	if got != want {
		t.Fatalf("canonical url = %s, want %s", got, want)
	}
}

func TestPrimaryCategoryFollowsPriority(t *testing.T) {
	t.Parallel()

	article := Article{Categories: []Category{CategoryForex, CategoryMacro}}
	if got := article.PrimaryCategory(); got != CategoryMacro {
		t.Fatalf("primary category = %s, want %s", got, CategoryMacro)
	}
}
