package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const raw = "---\norder: 1\ntitle: \"Hi\"\n---\n# Heading\n\nSome *text*.\n"

func TestRaw_ClassesAndText(t *testing.T) {
	out, err := New(Options{LineNumbers: true}).Raw(raw)
	require.NoError(t, err)

	assert.Contains(t, out, `class="chroma"`)
	assert.Contains(t, out, "Heading")
	assert.Contains(t, out, "order")
	// Line numbers continue from the frontmatter into the body.
	assert.Contains(t, out, ">6<")
}

func TestRaw_NoFrontmatter(t *testing.T) {
	out, err := New(Options{}).Raw("plain *markdown*")
	require.NoError(t, err)
	assert.Contains(t, out, "plain")
	assert.Contains(t, out, "markdown")
}

func TestRaw_EscapesHTML(t *testing.T) {
	out, err := New(Options{}).Raw("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "<script>"))
}

func TestStyleFallback(t *testing.T) {
	h := New(Options{Style: "no-such-style"})
	assert.NotEmpty(t, h.StyleName())

	css, err := New(Options{}).CSS()
	require.NoError(t, err)
	assert.Contains(t, css, ".chroma")
}
