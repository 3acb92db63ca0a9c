package blocks

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourstreets/blockpress/document"
)

func renderHTML(t *testing.T, b document.Block) string {
	t.Helper()
	var buf bytes.Buffer
	WriteBlock(&buf, b)
	return buf.String()
}

func TestUnknownBlockTypeRendersMarker(t *testing.T) {
	out := renderHTML(t, document.Block{ID: "b1", Type: "hologram", Props: map[string]any{}})
	assert.Contains(t, out, "block-unknown")
	assert.Contains(t, out, "hologram", "the unknown type is named, not silently dropped")
}

func TestRichTextInterpretsLightMarkup(t *testing.T) {
	out := renderHTML(t, document.Block{
		Type:  document.BlockRichText,
		Props: map[string]any{"content": "## Heading\n\nSome **bold** and `code` text\n\n- one\n- two"},
	})
	assert.Contains(t, out, "<h3>Heading</h3>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<code>code</code>")
	assert.Contains(t, out, "<ul><li>one</li><li>two</li></ul>")
}

func TestRichTextEscapesHTML(t *testing.T) {
	out := renderHTML(t, document.Block{
		Type:  document.BlockRichText,
		Props: map[string]any{"content": `<script>alert("x")</script>`},
	})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestLeadRendersPlainEmphasizedText(t *testing.T) {
	out := renderHTML(t, document.Block{
		Type:  document.BlockLead,
		Props: map[string]any{"content": "An **unformatted** opener"},
	})
	assert.Contains(t, out, "block-lead")
	assert.Contains(t, out, "<em>An **unformatted** opener</em>", "lead text is not markup-interpreted")
}

func TestCodeBlock(t *testing.T) {
	out := renderHTML(t, document.Block{
		Type: document.BlockCode,
		Props: map[string]any{
			"language": "go",
			"filename": "main.go",
			"code":     `fmt.Println("<hi>")`,
		},
	})
	assert.Contains(t, out, `<span class="code-lang">go</span>`)
	assert.Contains(t, out, `<span class="code-filename">main.go</span>`)
	assert.Contains(t, out, `class="language-go"`)
	assert.Contains(t, out, "&lt;hi&gt;")
}

func TestCalloutVariantFallback(t *testing.T) {
	for variant, wantClass := range map[string]string{
		"info":    "callout-info",
		"tip":     "callout-tip",
		"warning": "callout-warning",
		"danger":  "callout-info",
		"":        "callout-info",
	} {
		out := renderHTML(t, document.Block{
			Type:  document.BlockCallout,
			Props: map[string]any{"variant": variant, "text": "heads up"},
		})
		assert.Contains(t, out, wantClass, "variant %q", variant)
	}
}

func TestDividerStyles(t *testing.T) {
	for style, wantClass := range map[string]string{
		"solid":  "divider-solid",
		"dashed": "divider-dashed",
		"dotted": "divider-dotted",
		"wavy":   "divider-solid",
	} {
		out := renderHTML(t, document.Block{
			Type:  document.BlockDivider,
			Props: map[string]any{"style": style},
		})
		assert.Contains(t, out, wantClass, "style %q", style)
	}
}

func TestVideoPlaceholderForUnrecognizedURL(t *testing.T) {
	for _, u := range []string{"", "https://example.com/watch?v=abc", "not a url"} {
		out := renderHTML(t, document.Block{
			Type:  document.BlockVideo,
			Props: map[string]any{"url": u},
		})
		assert.Contains(t, out, "video-placeholder", "url %q", u)
		assert.NotContains(t, out, "<iframe", "url %q", u)
	}
}

func TestVideoEmbed(t *testing.T) {
	out := renderHTML(t, document.Block{
		Type:  document.BlockVideo,
		Props: map[string]any{"url": "https://www.youtube.com/watch?v=abc123", "caption": "Our gala"},
	})
	assert.Contains(t, out, `<iframe src="https://www.youtube.com/embed/abc123"`)
	assert.Contains(t, out, "<figcaption>Our gala</figcaption>")
}

func TestHeroAndImageEmptyStates(t *testing.T) {
	out := renderHTML(t, document.Block{Type: document.BlockHero, Props: map[string]any{}})
	assert.Contains(t, out, "block-hero-empty")

	out = renderHTML(t, document.Block{Type: document.BlockImage, Props: map[string]any{}})
	assert.Contains(t, out, "block-image-empty")
}

func TestQuoteWithAttribution(t *testing.T) {
	out := renderHTML(t, document.Block{
		Type:  document.BlockQuote,
		Props: map[string]any{"text": "Change is slow", "attribution": "A. Volunteer"},
	})
	assert.Contains(t, out, "<blockquote>Change is slow</blockquote>")
	assert.Contains(t, out, "<figcaption>A. Volunteer</figcaption>")
}

func TestRenderComponentWrites(t *testing.T) {
	var buf bytes.Buffer
	err := Render(document.Block{Type: document.BlockDivider, Props: map[string]any{}}).
		Render(context.Background(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "block-divider")
}
