package blocks

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/ourstreets/blockpress/document"
)

// hasRail reports whether the layout preset renders the metadata sidebar.
// Only the magazine-rail preset does, identically in preview and article.
func hasRail(preset document.LayoutPreset) bool {
	return preset == document.LayoutMagazineRail
}

func layoutClass(preset document.LayoutPreset) string {
	switch preset {
	case document.LayoutClassic, document.LayoutTechGuide, document.LayoutMagazineRail:
		return "layout-" + string(preset)
	default:
		return "layout-" + string(document.LayoutDefault)
	}
}

// Article composes the public-facing rendering of a document: every block in
// order under the layout preset, without editing affordances.
func Article(doc document.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		WriteArticle(&buf, doc)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// WriteArticle writes the article HTML for a document.
func WriteArticle(buf *bytes.Buffer, doc document.Document) {
	buf.WriteString(`<article class="article ` + layoutClass(doc.Layout.Preset) + `">`)
	writeHeader(buf, doc)
	buf.WriteString(`<div class="article-body">`)
	for _, b := range doc.Blocks {
		WriteBlock(buf, b)
	}
	buf.WriteString(`</div>`)
	if hasRail(doc.Layout.Preset) {
		writeRail(buf, doc)
	}
	buf.WriteString(`</article>`)
}

func writeHeader(buf *bytes.Buffer, doc document.Document) {
	buf.WriteString(`<header class="article-header"><h1>`)
	buf.WriteString(html.EscapeString(doc.Meta.Title))
	buf.WriteString(`</h1>`)
	if doc.Meta.Subtitle != "" {
		buf.WriteString(`<p class="article-subtitle">` + html.EscapeString(doc.Meta.Subtitle) + `</p>`)
	}
	buf.WriteString(`<div class="article-byline">`)
	if doc.Meta.AuthorRef != "" {
		buf.WriteString(`<span class="article-author">` + html.EscapeString(doc.Meta.AuthorRef) + `</span>`)
	}
	if date := displayDate(doc.Meta.PublishedAt); date != "" {
		buf.WriteString(`<time datetime="` + html.EscapeString(doc.Meta.PublishedAt) + `">` + date + `</time>`)
	}
	if doc.Meta.ReadingTime > 0 {
		buf.WriteString(`<span class="article-reading-time">` + readingTimeLabel(doc.Meta.ReadingTime) + `</span>`)
	}
	buf.WriteString(`</div></header>`)
}

// writeRail renders the magazine-rail sidebar summarizing author, publish
// date, and categories.
func writeRail(buf *bytes.Buffer, doc document.Document) {
	buf.WriteString(`<aside class="article-rail">`)
	if doc.Meta.AuthorRef != "" {
		buf.WriteString(`<div class="rail-author"><h4>Written by</h4><p>` +
			html.EscapeString(doc.Meta.AuthorRef) + `</p></div>`)
	}
	if date := displayDate(doc.Meta.PublishedAt); date != "" {
		buf.WriteString(`<div class="rail-published"><h4>Published</h4><p>` + date + `</p></div>`)
	}
	if len(doc.Meta.Categories) > 0 {
		buf.WriteString(`<div class="rail-categories"><h4>Filed under</h4><ul>`)
		for _, cat := range doc.Meta.Categories {
			buf.WriteString(`<li>` + html.EscapeString(cat) + `</li>`)
		}
		buf.WriteString(`</ul></div>`)
	}
	buf.WriteString(`</aside>`)
}

func displayDate(rfc3339 string) string {
	if rfc3339 == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return html.EscapeString(rfc3339)
	}
	return t.Format("January 2, 2006")
}

func readingTimeLabel(minutes int) string {
	return strconv.Itoa(minutes) + " min read"
}
