package blockpress

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ourstreets/blockpress/blocks"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	tag := c.QueryParam("tag")
	docs, err := a.Cache.ListPublished(ctx, tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.Tags(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(docs, tag, tags, a.Config.URL))
}

func (a *App) handleArticle(c echo.Context) error {
	slug := c.Param("slug")
	doc, err := a.Cache.GetBySlug(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	return Render(c, a.Views.Article(doc, blocks.Article(doc), a.Config.URL))
}

func (a *App) handleSitemap(c echo.Context) error {
	docs, err := a.Cache.ListPublished(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, docs)
}

func (a *App) handleFeed(c echo.Context) error {
	docs, err := a.Cache.ListPublished(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, docs)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
