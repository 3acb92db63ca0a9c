package blockpress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ourstreets/blockpress/document"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, docs []document.Document) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(docs))
	for _, d := range docs {
		pubDate := ""
		if t, err := time.Parse(time.RFC3339, d.Meta.PublishedAt); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		description := d.Meta.Subtitle
		if d.Meta.SEO.Description != "" {
			description = d.Meta.SEO.Description
		}
		docURL := BuildURL(base, "blog", d.Meta.Slug)
		items = append(items, rssItem{
			Title:       d.Meta.Title,
			Link:        docURL,
			Description: description,
			PubDate:     pubDate,
			GUID:        docURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
