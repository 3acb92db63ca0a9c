package blocks

import (
	"net/url"
	"strings"
)

// ResolveEmbed maps a pasted media URL to an embeddable frame source. Two
// providers are recognized: the YouTube URL shapes (watch, short link, embed)
// and Google Docs document links. Anything else reports false and the
// renderer shows a placeholder instead of a broken frame.
func ResolveEmbed(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			if id := strings.TrimPrefix(u.Path, "/embed/"); id != "" {
				return "https://www.youtube.com/embed/" + url.PathEscape(id), true
			}
		}
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(id), true
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + url.PathEscape(id), true
		}
	case "docs.google.com":
		if rest, ok := strings.CutPrefix(u.Path, "/document/d/"); ok {
			if id, _, _ := strings.Cut(rest, "/"); id != "" {
				return "https://docs.google.com/document/d/" + url.PathEscape(id) + "/preview", true
			}
		}
	}
	return "", false
}
