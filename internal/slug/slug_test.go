package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"diacritics", "Café au Lait", "cafe-au-lait"},
		{"collapsed runs", "a  --  b", "a-b"},
		{"leading trailing", "  !!spaced!!  ", "spaced"},
		{"numbers kept", "Top 10 Tips", "top-10-tips"},
		{"all punctuation", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestForPost(t *testing.T) {
	slugRe := regexp.MustCompile(`^hello-world-[0-9a-z]{7}$`)

	s, err := ForPost("Hello World!")
	require.NoError(t, err)
	assert.Regexp(t, slugRe, s)

	// Identical titles never collide.
	s2, err := ForPost("Hello World!")
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)
}

func TestForPostEmptyTitle(t *testing.T) {
	// A title with no slug-able characters yields a bare suffix,
	// no leading dash.
	s, err := ForPost("???")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-z]{7}$`, s)
}

func TestForTag(t *testing.T) {
	assert.Equal(t, "node-js", ForTag("Node.js"))
	assert.Equal(t, "go", ForTag("Go"))

	// No random suffix: tag slugs are stable.
	assert.Equal(t, ForTag("Node.js"), ForTag("Node.js"))
}

func TestNormalizeTagName(t *testing.T) {
	// Variant spellings of the same tag share one key.
	assert.Equal(t, "nodejs", NormalizeTagName("Node.js"))
	assert.Equal(t, "nodejs", NormalizeTagName("NODE JS"))
	assert.Equal(t, "nodejs", NormalizeTagName("nodejs"))

	assert.Equal(t, "", NormalizeTagName("!!!"))
	assert.Equal(t, "c", NormalizeTagName("C++"))
}
