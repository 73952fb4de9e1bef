package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"newsrelay/internal/domain"
	"newsrelay/internal/filter"
)

func article(title, summary string) domain.Article {
	return domain.Article{Title: title, Summary: summary}
}

func TestClassifySingleCategory(t *testing.T) {
	t.Parallel()

	f := filter.New(nil)

	tags, ok := f.Classify(article("Bitcoin climbs past resistance", ""))
	require.True(t, ok)
	require.Equal(t, []domain.Category{domain.CategoryCrypto}, tags)

	tags, ok = f.Classify(article("OPEC weighs output cut", ""))
	require.True(t, ok)
	require.Equal(t, []domain.Category{domain.CategoryCommodities}, tags)
}

func TestClassifyMultipleCategoriesPriorityOrder(t *testing.T) {
	t.Parallel()

	f := filter.New(nil)

	tags, ok := f.Classify(article(
		"Gold rallies as the Fed signals caution",
		"Bullion tracked a weaker dollar while bitcoin drifted lower.",
	))
	require.True(t, ok)
	require.Equal(t, []domain.Category{
		domain.CategoryCrypto,
		domain.CategoryMacro,
		domain.CategoryForex,
		domain.CategoryCommodities,
	}, tags)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := filter.New(nil)

	_, ok := f.Classify(article("NASDAQ closes at record", ""))
	require.True(t, ok)

	_, ok = f.Classify(article("ETHEREUM upgrade ships", ""))
	require.True(t, ok)
}

func TestClassifySearchesSummaryToo(t *testing.T) {
	t.Parallel()

	f := filter.New(nil)

	tags, ok := f.Classify(article(
		"Weekly wrap",
		"Crude oil ended the week lower after inventory data.",
	))
	require.True(t, ok)
	require.Contains(t, tags, domain.CategoryCommodities)
}

func TestClassifyRejectsOffTopic(t *testing.T) {
	t.Parallel()

	f := filter.New(nil)

	tags, ok := f.Classify(article("Local team wins the cup final", "A thrilling second half."))
	require.False(t, ok)
	require.Empty(t, tags)
}

func TestExtraKeywordsExtendCategory(t *testing.T) {
	t.Parallel()

	f := filter.New(map[string][]string{
		"crypto": {" Restaking "},
	})

	tags, ok := f.Classify(article("Restaking protocols draw inflows", ""))
	require.True(t, ok)
	require.Equal(t, []domain.Category{domain.CategoryCrypto}, tags)
}

func TestExtraKeywordsUnknownCategoryIgnored(t *testing.T) {
	t.Parallel()

	f := filter.New(map[string][]string{
		"sports": {"cup final"},
	})

	_, ok := f.Classify(article("Local team wins the cup final", ""))
	require.False(t, ok)
}
