// Package blockpress is a block-based publishing engine built with Go, Echo,
// and templ. Articles are structured documents made of typed blocks (hero,
// rich text, code, quotes, embeds) rather than a single markdown body; the
// engine provides the document model, a server-side editor with autosaved
// drafts, rendering, RSS, and sitemap out of the box.
//
// Users provide their own templ components via the ViewFuncs struct, and
// blockpress handles handler logic, middleware, and persistence.
package blockpress

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ourstreets/blockpress/document"
	"github.com/ourstreets/blockpress/draft"
	"github.com/ourstreets/blockpress/editor"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates. The article body and preview
// markup are produced by the blocks package and passed in pre-rendered.
type ViewFuncs struct {
	Home           func(docs []document.Document, activeTag string, tags []string, siteURL string) templ.Component
	Article        func(doc document.Document, body templ.Component, siteURL string) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(docs []document.Document, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central blockpress application. It wires together the store,
// cache, draft store, editor sessions, handlers, middleware, and
// user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ArticleCache
	Drafts draft.Store
	Views  ViewFuncs

	logger       *zap.Logger
	editors      *editorRegistry
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new blockpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the stores, cache, middleware, routes, and starts the server.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("blockpress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("blockpress: SessionSecret is required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("blockpress: init logger: %w", err)
	}
	a.logger = logger

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blockpress: init store: %w", err)
	}
	a.Store = store

	drafts, err := draft.OpenBadger(a.Config.DraftPath)
	if err != nil {
		return fmt.Errorf("blockpress: init draft store: %w", err)
	}
	a.Drafts = drafts

	a.Cache = NewArticleCache(a.Store, a.Config.ArticleCacheTTL)
	a.editors = newEditorRegistry(a)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handleArticle)

	// Admin pages
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	// Editor JSON API
	api := e.Group("/admin/api", a.requireAdmin)
	api.GET("/docs", a.handleDocList)
	api.POST("/docs/:id/open", a.handleDocOpen)
	api.GET("/docs/:id", a.handleDocState)
	api.POST("/docs/:id/ops", a.handleDocOps)
	api.POST("/docs/:id/save", a.handleDocSave)
	api.POST("/docs/:id/publish", a.handleDocPublish)
	api.DELETE("/docs/:id/draft", a.handleDraftDiscard)
	api.GET("/docs/:id/preview", a.handleDocPreview)
	api.DELETE("/docs/:id", a.handleDocDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.editors != nil {
		a.editors.closeAll()
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Drafts != nil {
		a.Drafts.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// editorRegistry keeps one editor session per open document so repeated
// API calls against the same document share state and autosave timers.
type editorRegistry struct {
	mu       sync.Mutex
	sessions map[string]*editor.Session
	app      *App
}

func newEditorRegistry(a *App) *editorRegistry {
	return &editorRegistry{
		sessions: make(map[string]*editor.Session),
		app:      a,
	}
}

// open returns the session for the given document ID, creating and loading
// one if none is open. The empty ID and the "new" sentinel both map to a
// single shared unsaved-document session. The restored flag reports whether
// a first open resumed from an unsaved local draft.
//
// A failed backing-store load is returned alongside the session: the author
// gets a blank document to work in, but must be told the stored copy could
// not be fetched.
func (r *editorRegistry) open(ctx context.Context, docID string) (*editor.Session, bool, error) {
	key := docID
	if key == "" {
		key = document.NewID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s, false, nil
	}

	opts := []editor.Option{}
	if r.app.Config.AutosaveDebounce > 0 {
		opts = append(opts, editor.WithDebounce(r.app.Config.AutosaveDebounce))
	}
	s := editor.NewSession(r.app.Store, r.app.Drafts, r.app.logger, opts...)
	restored, err := s.Open(ctx, docID)
	if err != nil {
		r.app.logger.Warn("editor open fell back to blank document",
			zap.String("doc_id", docID), zap.Error(err))
	}
	r.sessions[key] = s
	return s, restored, err
}

// get returns an already-open session or nil.
func (r *editorRegistry) get(docID string) *editor.Session {
	key := docID
	if key == "" {
		key = document.NewID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[key]
}

// rekey moves a session from the "new" sentinel to its assigned ID after
// the first successful save.
func (r *editorRegistry) rekey(oldID, newID string) {
	if oldID == newID {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[oldID]; ok {
		delete(r.sessions, oldID)
		r.sessions[newID] = s
	}
}

// drop closes and removes a session.
func (r *editorRegistry) drop(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[docID]; ok {
		s.Close()
		delete(r.sessions, docID)
	}
}

func (r *editorRegistry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.Close()
		delete(r.sessions, id)
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("blockpress: required environment variable %s is not set", key)
	}
	return v
}
