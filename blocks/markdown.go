package blocks

import (
	"bytes"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBold           = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore = regexp.MustCompile(`__(.+?)__`)
	reItalic         = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnder    = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode     = regexp.MustCompile("`([^`]+)`")
	reLink           = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedItem    = regexp.MustCompile(`^(\d+)\.\s`)
)

// writeRichText renders the light markup a rich-text block carries: headings,
// lists, and paragraphs with inline formatting. Code fences, quotes, and
// media have their own block variants and are not interpreted here.
func writeRichText(buf *bytes.Buffer, src string) {
	inList := false
	inOrdered := false
	inPara := false

	closeList := func() {
		if inList {
			buf.WriteString("</ul>")
			inList = false
		}
	}
	closeOrdered := func() {
		if inOrdered {
			buf.WriteString("</ol>")
			inOrdered = false
		}
	}
	closePara := func() {
		if inPara {
			buf.WriteString("</p>")
			inPara = false
		}
	}
	closeAll := func() {
		closePara()
		closeList()
		closeOrdered()
	}

	for _, raw := range strings.Split(src, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			closeAll()
			continue
		}

		switch {
		case strings.HasPrefix(line, "### "):
			closeAll()
			buf.WriteString("<h4>")
			buf.WriteString(formatInline(strings.TrimSpace(line[4:])))
			buf.WriteString("</h4>")
		case strings.HasPrefix(line, "## "):
			closeAll()
			buf.WriteString("<h3>")
			buf.WriteString(formatInline(strings.TrimSpace(line[3:])))
			buf.WriteString("</h3>")
		case strings.HasPrefix(line, "# "):
			closeAll()
			buf.WriteString("<h2>")
			buf.WriteString(formatInline(strings.TrimSpace(line[2:])))
			buf.WriteString("</h2>")
		case strings.HasPrefix(line, "- "):
			if !inList {
				closePara()
				closeOrdered()
				buf.WriteString("<ul>")
				inList = true
			}
			buf.WriteString("<li>")
			buf.WriteString(formatInline(strings.TrimSpace(line[2:])))
			buf.WriteString("</li>")
		case reOrderedItem.MatchString(line):
			if !inOrdered {
				closePara()
				closeList()
				buf.WriteString("<ol>")
				inOrdered = true
			}
			item := reOrderedItem.ReplaceAllString(line, "")
			buf.WriteString("<li>")
			buf.WriteString(formatInline(strings.TrimSpace(item)))
			buf.WriteString("</li>")
		default:
			if !inPara {
				closeList()
				closeOrdered()
				buf.WriteString("<p>")
				inPara = true
			} else {
				buf.WriteString(" ")
			}
			buf.WriteString(formatInline(strings.TrimSpace(line)))
		}
	}
	closeAll()
}

// formatInline escapes s and applies inline formatting: links, inline code,
// bold, italic. Inline code is swapped out for placeholders first so the
// emphasis regexes never touch backticked content, and emphasis runs only
// outside HTML tags so generated href attributes stay intact.
func formatInline(s string) string {
	escaped := html.EscapeString(s)

	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		if len(match) < 3 {
			return m
		}
		href := safeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if len(match) >= 4 && match[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})

	var codeSpans []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reInlineCode.FindStringSubmatch(m)
		placeholder := "\x00C" + strconv.Itoa(len(codeSpans)) + "\x00"
		codeSpans = append(codeSpans, "<code>"+match[1]+"</code>")
		return placeholder
	})

	escaped = applyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnder.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})

	for i, code := range codeSpans {
		escaped = strings.Replace(escaped, "\x00C"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

// applyOutsideTags applies fn only to text segments outside HTML tags.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// safeURL validates a URL for use in an HTML attribute. Relative paths and
// fragments pass through; absolute URLs must carry an allowed scheme.
func safeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
