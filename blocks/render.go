// Package blocks renders typed content blocks to HTML as templ components.
// The same renderer backs the editor preview and the public article view, so
// authors always see exactly what readers will.
package blocks

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/ourstreets/blockpress/document"
)

// calloutVariants is the closed set of callout treatments.
var calloutVariants = map[string]bool{"info": true, "tip": true, "warning": true}

// dividerStyles is the closed set of divider line styles.
var dividerStyles = map[string]bool{"solid": true, "dashed": true, "dotted": true}

// Render returns a templ component for a single block. The mapping is pure:
// the same block always renders the same markup.
func Render(b document.Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		WriteBlock(&buf, b)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// WriteBlock writes the HTML for one block. Every variant in the closed type
// set is handled; anything else gets a visible unknown-block marker rather
// than being dropped, since content must never vanish without an explicit
// author action.
func WriteBlock(buf *bytes.Buffer, b document.Block) {
	switch b.Type {
	case document.BlockHero:
		writeHero(buf, b)
	case document.BlockImage:
		writeImage(buf, b)
	case document.BlockLead:
		writeLead(buf, b)
	case document.BlockRichText:
		buf.WriteString(`<div class="block block-richtext">`)
		writeRichText(buf, prop(b, "content"))
		buf.WriteString(`</div>`)
	case document.BlockCode:
		writeCode(buf, b)
	case document.BlockQuote:
		writeQuote(buf, b)
	case document.BlockCallout:
		writeCallout(buf, b)
	case document.BlockDivider:
		writeDivider(buf, b)
	case document.BlockVideo:
		writeVideo(buf, b)
	default:
		buf.WriteString(`<div class="block block-unknown">Unknown block type: `)
		buf.WriteString(html.EscapeString(string(b.Type)))
		buf.WriteString(`</div>`)
	}
}

func writeHero(buf *bytes.Buffer, b document.Block) {
	src := safeURL(prop(b, "url"))
	if src == "" {
		buf.WriteString(`<div class="block block-hero block-hero-empty">Add hero media</div>`)
		return
	}
	buf.WriteString(`<figure class="block block-hero"><img src="` + src +
		`" alt="` + html.EscapeString(prop(b, "alt")) + `"/>`)
	if credit := prop(b, "credit"); credit != "" {
		buf.WriteString(`<figcaption class="hero-credit">` + html.EscapeString(credit) + `</figcaption>`)
	}
	buf.WriteString(`</figure>`)
}

func writeImage(buf *bytes.Buffer, b document.Block) {
	src := safeURL(prop(b, "url"))
	if src == "" {
		buf.WriteString(`<div class="block block-image block-image-empty">Add an image</div>`)
		return
	}
	buf.WriteString(`<figure class="block block-image"><img src="` + src +
		`" alt="` + html.EscapeString(prop(b, "alt")) + `" loading="lazy"/>`)
	if caption := prop(b, "caption"); caption != "" {
		buf.WriteString(`<figcaption>` + html.EscapeString(caption) + `</figcaption>`)
	}
	buf.WriteString(`</figure>`)
}

func writeLead(buf *bytes.Buffer, b document.Block) {
	// Lead paragraphs are plain emphasized text; no markup interpretation.
	buf.WriteString(`<p class="block block-lead"><em>`)
	buf.WriteString(html.EscapeString(prop(b, "content")))
	buf.WriteString(`</em></p>`)
}

func writeCode(buf *bytes.Buffer, b document.Block) {
	buf.WriteString(`<div class="block block-code">`)
	if filename := prop(b, "filename"); filename != "" {
		buf.WriteString(`<span class="code-filename">` + html.EscapeString(filename) + `</span>`)
	}
	lang := prop(b, "language")
	if lang != "" {
		escapedLang := html.EscapeString(lang)
		buf.WriteString(`<span class="code-lang">` + escapedLang + `</span>`)
		buf.WriteString(`<pre><code class="language-` + escapedLang + `">`)
	} else {
		buf.WriteString(`<pre><code>`)
	}
	buf.WriteString(html.EscapeString(prop(b, "code")))
	buf.WriteString(`</code></pre></div>`)
}

func writeQuote(buf *bytes.Buffer, b document.Block) {
	buf.WriteString(`<figure class="block block-quote"><blockquote>`)
	buf.WriteString(html.EscapeString(prop(b, "text")))
	buf.WriteString(`</blockquote>`)
	if attribution := prop(b, "attribution"); attribution != "" {
		buf.WriteString(`<figcaption>` + html.EscapeString(attribution) + `</figcaption>`)
	}
	buf.WriteString(`</figure>`)
}

func writeCallout(buf *bytes.Buffer, b document.Block) {
	variant := prop(b, "variant")
	if !calloutVariants[variant] {
		variant = "info"
	}
	buf.WriteString(`<aside class="block block-callout callout-` + variant + `">`)
	buf.WriteString(html.EscapeString(prop(b, "text")))
	buf.WriteString(`</aside>`)
}

func writeDivider(buf *bytes.Buffer, b document.Block) {
	style := prop(b, "style")
	if !dividerStyles[style] {
		style = "solid"
	}
	buf.WriteString(`<hr class="block block-divider divider-` + style + `"/>`)
}

func writeVideo(buf *bytes.Buffer, b document.Block) {
	src, ok := ResolveEmbed(prop(b, "url"))
	if !ok {
		buf.WriteString(`<div class="block block-video video-placeholder">Unable to embed video</div>`)
		return
	}
	buf.WriteString(`<figure class="block block-video"><iframe src="` + html.EscapeString(src) +
		`" loading="lazy" allowfullscreen></iframe>`)
	if caption := prop(b, "caption"); caption != "" {
		buf.WriteString(`<figcaption>` + html.EscapeString(caption) + `</figcaption>`)
	}
	buf.WriteString(`</figure>`)
}

// prop reads a string prop, tolerating missing keys and non-string values.
func prop(b document.Block, key string) string {
	s, _ := b.Props[key].(string)
	return s
}
