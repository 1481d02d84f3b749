package document

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Cleaner normalizes text extracted from PDFs. Extraction tends to produce
// decomposed unicode, stray control characters, and ragged whitespace.
type Cleaner struct {
	multipleSpacesRegex   *regexp.Regexp
	multipleNewlinesRegex *regexp.Regexp
	tabsRegex             *regexp.Regexp
}

func NewCleaner() *Cleaner {
	return &Cleaner{
		multipleSpacesRegex:   regexp.MustCompile(`[ \t]+`),
		multipleNewlinesRegex: regexp.MustCompile(`\n{3,}`),
		tabsRegex:             regexp.MustCompile(`\t+`),
	}
}

// CleanText normalizes extracted page text to NFC and tidies whitespace.
func (c *Cleaner) CleanText(text string) string {
	text = norm.NFC.String(text)
	text = c.removeInvisibleCharacters(text)
	text = c.normalizeWhitespace(text)

	// Keep at most one blank line between paragraphs
	text = c.multipleNewlinesRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

func (c *Cleaner) normalizeWhitespace(text string) string {
	text = c.tabsRegex.ReplaceAllString(text, " ")
	text = c.multipleSpacesRegex.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, " \n", "\n")
	text = strings.ReplaceAll(text, "\n ", "\n")
	return text
}

// removeInvisibleCharacters drops zero-width and non-printable runes
func (c *Cleaner) removeInvisibleCharacters(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))

	for _, r := range text {
		switch r {
		case '\u200b', // Zero-width space
			'\u200c', // Zero-width non-joiner
			'\u200d', // Zero-width joiner
			'\ufeff': // Zero-width no-break space (BOM)
			continue
		}

		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// IsContentMostlyWhitespace reports whether text carries no real content
func (c *Cleaner) IsContentMostlyWhitespace(text string) bool {
	if len(text) == 0 {
		return true
	}

	nonWhitespaceCount := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			nonWhitespaceCount++
		}
	}

	return nonWhitespaceCount < 3
}
