package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const post = "# Patch 1.2\n\nThe **new** build adds _offline_ mode.\nSee [notes](https://example.com).\n\n```go\nfmt.Println(\"hidden\")\n```\n\n![shot](shot.png)\n\n- fixed crash\n- faster load\n"

func TestPlainText(t *testing.T) {
	got := PlainText(post)
	assert.Equal(t, "Patch 1.2 The new build adds offline mode. See notes. fixed crash faster load", got)
	assert.NotContains(t, got, "hidden")
	assert.NotContains(t, got, "shot")
}

func TestPlainText_Empty(t *testing.T) {
	assert.Equal(t, "", PlainText(""))
	assert.Equal(t, "", PlainText("   \n\n"))
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 100)

	got := Excerpt(long, 23)
	assert.Equal(t, "word word word word...", got)
	assert.LessOrEqual(t, utf8.RuneCountInString(strings.TrimSuffix(got, "...")), 23)

	assert.Equal(t, "short text", Excerpt("short *text*", 50))
	assert.LessOrEqual(t, utf8.RuneCountInString(Excerpt(long, 0)), DefaultExcerptLength+3)
}

func TestExcerpt_MultibyteSafe(t *testing.T) {
	got := Excerpt(strings.Repeat("한글", 50), 11)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestRender(t *testing.T) {
	html, err := Render("| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~")
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<del>old</del>")
}
