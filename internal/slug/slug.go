// Package slug generates URL-safe slugs for posts and tags.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// suffixAlphabet is base-36: digits plus lowercase letters.
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	// suffixLength gives ~78 billion combinations, enough to make
	// collisions on identical titles vanishingly rare.
	suffixLength = 7
)

var (
	// Matches runs of anything that isn't a lowercase letter or digit.
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)

	// Strips combining marks after NFD decomposition ("café" → "cafe").
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify converts arbitrary text to a canonical slug form.
//
// Rules:
//  1. Decompose accented characters and drop the combining marks
//  2. Lowercase
//  3. Collapse every run of non-alphanumerics into a single dash
//  4. Trim leading/trailing dashes
//
// Examples:
//
//	"Hello World!"      → "hello-world"
//	"Café au Lait"      → "cafe-au-lait"
//	"  spaced   out  "  → "spaced-out"
func Slugify(s string) string {
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = nonAlphanumericRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ForPost generates a slug for a post title with a random base-36 suffix.
// The suffix is appended unconditionally so two posts with the same title
// never share a slug. A title that slugifies to nothing yields just the
// suffix, with no leading dash.
func ForPost(title string) (string, error) {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate slug suffix: %w", err)
	}

	base := Slugify(title)
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

// ForTag generates a slug for a tag name. Tag slugs carry no random
// suffix: they are stable identifiers shared across posts, and the slug
// column's uniqueness constraint is what keeps them from colliding.
func ForTag(name string) string {
	return Slugify(name)
}

// NormalizeTagName reduces a tag name to its fuzzy-match key: lowercase
// with everything outside [a-z0-9] removed. Deliberately coarser than the
// slug so that "Node.js", "nodejs", and "NODE JS" all resolve to the same
// existing tag.
func NormalizeTagName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
