// Package richtext converts stored post content (HTML or Markdown) into
// plain text for excerpts and search indexing.
package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|img|ul|ol|li|h[1-6]|blockquote|pre|code|figure)[\s>/]`)

// markdownSyntaxPattern strips the markdown punctuation left over after
// HTML conversion: headings, emphasis, code fences, link/image syntax.
var markdownSyntaxPattern = regexp.MustCompile("(?m)^#{1,6}\\s+|[*_`>]+|!?\\[([^\\]]*)\\]\\([^)]*\\)")

// whitespacePattern collapses newlines and runs of spaces.
var whitespacePattern = regexp.MustCompile(`\s+`)

// ContainsHTML checks if a string appears to contain HTML markup.
// Returns true if common HTML tags are detected.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML content to Markdown.
// If the input doesn't contain HTML, it's returned unchanged.
func ToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		// If conversion fails, return the original string
		return s
	}

	return strings.TrimSpace(markdown)
}

// ToPlainText reduces HTML or Markdown content to a single line of plain
// text. Link and image syntax keeps its label text; everything else
// markdown-ish is stripped.
func ToPlainText(s string) string {
	s = ToMarkdown(s)
	s = markdownSyntaxPattern.ReplaceAllString(s, "$1")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Excerpt derives a short plain-text excerpt from post content, cut at a
// word boundary no longer than maxLen runes. An ellipsis is appended when
// the content was truncated.
func Excerpt(content string, maxLen int) string {
	text := ToPlainText(content)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	cut := maxLen
	for i := maxLen; i > 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}

	return strings.TrimRight(string(runes[:cut]), " ,;:.") + "…"
}
