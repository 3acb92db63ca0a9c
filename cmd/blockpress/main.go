// Command blockpress runs a standalone blockpress site with a minimal
// built-in look. Sites wanting custom templates import the library and
// provide their own ViewFuncs instead.
package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/a-h/templ"

	"github.com/ourstreets/blockpress"
	"github.com/ourstreets/blockpress/document"
)

func main() {
	cfg := blockpress.SiteConfig{
		Name:          blockpress.EnvOr("SITE_NAME", "Blog"),
		URL:           blockpress.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:   blockpress.EnvOr("SITE_DESCRIPTION", ""),
		Author:        blockpress.EnvOr("SITE_AUTHOR", ""),
		Addr:          blockpress.EnvOr("ADDR", ":3000"),
		DatabasePath:  blockpress.EnvOr("DATABASE_PATH", "data/blog.db"),
		DraftPath:     blockpress.EnvOr("DRAFT_PATH", "data/drafts"),
		AdminPassword: blockpress.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: blockpress.MustEnv("SESSION_SECRET"),
		CookieSecure:  blockpress.EnvOr("COOKIE_SECURE", "") == "true",
	}

	app := blockpress.New(cfg, defaultViews(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		app.Close()
		_ = app.Echo.Shutdown(context.Background())
	}()

	if err := app.Start(); err != nil {
		log.Fatalf("blockpress: %v", err)
	}
}

func defaultViews(cfg blockpress.SiteConfig) blockpress.ViewFuncs {
	return blockpress.ViewFuncs{
		Home: func(docs []document.Document, activeTag string, tags []string, siteURL string) templ.Component {
			return page(cfg.Name, func(w io.Writer) {
				fmt.Fprintf(w, "<h1>%s</h1>", html.EscapeString(cfg.Name))
				if len(tags) > 0 {
					fmt.Fprint(w, `<nav class="tags">`)
					for _, t := range tags {
						class := ""
						if t == activeTag {
							class = ` class="active"`
						}
						fmt.Fprintf(w, `<a href="/?tag=%s"%s>%s</a> `,
							blockpress.PathEscape(t), class, html.EscapeString(t))
					}
					fmt.Fprint(w, `</nav>`)
				}
				fmt.Fprint(w, `<ul class="articles">`)
				for _, d := range docs {
					fmt.Fprintf(w, `<li><a href="/blog/%s/">%s</a>`,
						blockpress.PathEscape(d.Meta.Slug), html.EscapeString(d.Meta.Title))
					if d.Meta.Subtitle != "" {
						fmt.Fprintf(w, `<p>%s</p>`, html.EscapeString(d.Meta.Subtitle))
					}
					fmt.Fprint(w, `</li>`)
				}
				fmt.Fprint(w, `</ul>`)
			})
		},
		Article: func(doc document.Document, body templ.Component, siteURL string) templ.Component {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				title := doc.Meta.Title
				if doc.Meta.SEO.Title != "" {
					title = doc.Meta.SEO.Title
				}
				fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title>`,
					html.EscapeString(title))
				fmt.Fprintf(w, `<script type="application/ld+json">%s</script>`,
					blockpress.ArticleJsonLD(doc, cfg))
				fmt.Fprint(w, `</head><body>`)
				if err := body.Render(ctx, w); err != nil {
					return err
				}
				fmt.Fprint(w, `</body></html>`)
				return nil
			})
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return page("Admin", func(w io.Writer) {
				if showError {
					fmt.Fprint(w, `<p class="error">Wrong password.</p>`)
				}
				fmt.Fprintf(w, `<form method="post" action="/admin/login/">`+
					`<input type="hidden" name="_csrf" value="%s">`+
					`<input type="password" name="password" autofocus>`+
					`<button type="submit">Log in</button></form>`, html.EscapeString(csrfToken))
			})
		},
		AdminDashboard: func(docs []document.Document, message string, csrfToken string) templ.Component {
			return page("Dashboard", func(w io.Writer) {
				if message != "" {
					fmt.Fprintf(w, `<p class="message">%s</p>`, html.EscapeString(message))
				}
				fmt.Fprint(w, `<table><tr><th>Title</th><th>Status</th><th>Updated</th></tr>`)
				for _, d := range docs {
					fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
						html.EscapeString(d.Meta.Title), html.EscapeString(string(d.Meta.Status)),
						html.EscapeString(d.Meta.UpdatedAt))
				}
				fmt.Fprint(w, `</table>`)
			})
		},
		NotFound: func() templ.Component {
			return page("Not Found", func(w io.Writer) {
				fmt.Fprint(w, `<h1>404</h1><p>Page not found.</p><a href="/">Home</a>`)
			})
		},
		ServerError: func() templ.Component {
			return page("Error", func(w io.Writer) {
				fmt.Fprint(w, `<h1>500</h1><p>Something went wrong.</p><a href="/">Home</a>`)
			})
		},
	}
}

func page(title string, body func(w io.Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body>`,
			html.EscapeString(title))
		body(w)
		_, err := fmt.Fprint(w, `</body></html>`)
		return err
	})
}
