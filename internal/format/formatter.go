// Package format renders accepted articles into outbound messages.
package format

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

// minTranslatableLen skips translation for text too short to carry meaning.
const minTranslatableLen = 10

// headline decoration per category; the primary tag picks the template.
var categoryHeadlines = map[domain.Category]struct {
	Emoji string
	Label string
}{
	domain.CategoryCrypto:      {Emoji: "₿", Label: "CRYPTO"},
	domain.CategoryMacro:       {Emoji: "\U0001f3db️", Label: "ECONOMY"},
	domain.CategoryEquities:    {Emoji: "\U0001f4c8", Label: "STOCKS"},
	domain.CategoryForex:       {Emoji: "\U0001f4b1", Label: "FOREX"},
	domain.CategoryCommodities: {Emoji: "\U0001f6e2️", Label: "COMMODITIES"},
}

// assetFlags decorates headlines with an asset or country marker when one
// of these keywords appears in the content.
var assetFlags = []struct {
	Keyword string
	Flag    string
}{
	{"bitcoin", "₿"},
	{"btc", "₿"},
	{"ethereum", "\U0001f537"},
	{"federal reserve", "\U0001f3e6"},
	{"fed", "\U0001f3e6"},
	{"oil", "\U0001f6e2️"},
	{"gold", "\U0001f947"},
	{"dollar", "\U0001f4b5"},
	{"china", "\U0001f1e8\U0001f1f3"},
	{"europe", "\U0001f1ea\U0001f1fa"},
}

// Formatter renders a localized message per article, degrading to the
// original-language text when the translation collaborator fails.
type Formatter struct {
	translator ports.Translator
	sourceLang string
	targetLang string
	channelTag string
	logger     *slog.Logger
}

// New wires the translation collaborator; nil disables translation.
func New(translator ports.Translator, sourceLang, targetLang, channelTag string, logger *slog.Logger) *Formatter {
	return &Formatter{
		translator: translator,
		sourceLang: sourceLang,
		targetLang: targetLang,
		channelTag: channelTag,
		logger:     logger,
	}
}

// Render produces the outbound message for an accepted article. Only a
// structurally unrendered article (no title) is an error; translation
// failures degrade to the untranslated text so delivery still proceeds.
func (f *Formatter) Render(ctx context.Context, article domain.Article) (domain.Message, error) {
	title := strings.TrimSpace(article.Title)
	if title == "" {
		return domain.Message{}, fmt.Errorf("article %s has no title", article.Fingerprint)
	}

	headline := categoryHeadlines[article.PrimaryCategory()]
	flag := detectFlag(article.Title, article.Summary)

	localizedTitle := f.localize(ctx, title)

	var b strings.Builder
	fmt.Fprintf(&b, "\U0001f6a8 %s %s %s\n", headline.Emoji, flag, localizedTitle)

	if summary := strings.TrimSpace(article.Summary); summary != "" {
		fmt.Fprintf(&b, "\n\U0001f4dd %s\n", f.localize(ctx, summary))
	}

	if f.channelTag != "" {
		fmt.Fprintf(&b, "\n\U0001f4c8 %s", f.channelTag)
	}

	return domain.Message{
		Fingerprint:    article.Fingerprint,
		Text:           b.String(),
		PublishedAt:    article.PublishedAt,
		DisablePreview: true,
	}, nil
}

// localize translates text when worthwhile, returning the original on any
// collaborator failure.
func (f *Formatter) localize(ctx context.Context, text string) string {
	if f.translator == nil || len(text) < minTranslatableLen {
		return text
	}
	if isTargetScript(text, f.targetLang) {
		return text
	}

	translated, err := f.translator.Translate(ctx, text, f.sourceLang, f.targetLang)
	if err != nil || strings.TrimSpace(translated) == "" {
		if f.logger != nil {
			f.logger.Warn("translation failed, using original text", "error", err)
		}
		return text
	}
	return translated
}

// isTargetScript reports whether the text is already predominantly in the
// target language's script; only Arabic is detected today.
func isTargetScript(text, targetLang string) bool {
	if targetLang != "ar" {
		return false
	}

	var arabic, letters int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.In(r, unicode.Arabic) {
				arabic++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(arabic)/float64(letters) > 0.7
}

func detectFlag(title, summary string) string {
	content := strings.ToLower(title + " " + summary)
	for _, entry := range assetFlags {
		if strings.Contains(content, entry.Keyword) {
			return entry.Flag
		}
	}
	return "\U0001fa99"
}
