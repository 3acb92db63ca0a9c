package blocks

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ourstreets/blockpress/document"
)

// viewportWidths maps the three preview presets to a fixed pixel width.
var viewportWidths = map[string]int{
	"mobile":  390,
	"tablet":  768,
	"desktop": 1080,
}

// Preview composes the edit-time rendering of a document: the same block
// renderer as the article view, but each block wrapped in a selection click
// target, the selected block visually marked, and the whole article
// constrained to one of the fixed viewport widths.
func Preview(doc document.Document, selectedID, viewport string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		WritePreview(&buf, doc, selectedID, viewport)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// WritePreview writes the preview HTML. An unrecognized viewport falls back
// to desktop width.
func WritePreview(buf *bytes.Buffer, doc document.Document, selectedID, viewport string) {
	width, ok := viewportWidths[viewport]
	if !ok {
		width = viewportWidths["desktop"]
	}
	buf.WriteString(`<div class="preview" style="max-width:` + strconv.Itoa(width) + `px">`)
	buf.WriteString(`<article class="article ` + layoutClass(doc.Layout.Preset) + `">`)
	writeHeader(buf, doc)
	buf.WriteString(`<div class="article-body">`)
	for _, b := range doc.Blocks {
		class := "preview-block"
		if b.ID == selectedID {
			class += " is-selected"
		}
		// data-block-id is the handle the console uses to report selection
		// back to the editing session.
		buf.WriteString(`<div class="` + class + `" data-block-id="` + html.EscapeString(b.ID) + `">`)
		WriteBlock(buf, b)
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</div>`)
	if hasRail(doc.Layout.Preset) {
		writeRail(buf, doc)
	}
	buf.WriteString(`</article></div>`)
}
