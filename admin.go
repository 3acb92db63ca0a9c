package blockpress

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ourstreets/blockpress/blocks"
	"github.com/ourstreets/blockpress/document"
	"github.com/ourstreets/blockpress/editor"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	records, err := a.Store.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	docs := make([]document.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, document.Normalize(r))
	}
	return Render(c, a.Views.AdminDashboard(docs, msg, CsrfToken(c)))
}

// requireAdmin guards the editor JSON API. Unlike the HTML admin pages it
// answers 401 instead of redirecting, since the callers are fetch requests.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		return next(c)
	}
}

func (a *App) handleDocList(c echo.Context) error {
	records, err := a.Store.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	docs := make([]document.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, document.Normalize(r))
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

// handleDocOpen opens (or resumes) an editor session for the document.
// Use the id "new" to start an unsaved document. The response reports
// whether an unsaved local draft was restored instead of the stored copy,
// and carries a load_error when the stored copy could not be fetched and
// the session fell back to a blank document.
func (a *App) handleDocOpen(c echo.Context) error {
	sess, restored, err := a.editors.open(c.Request().Context(), c.Param("id"))
	resp := map[string]any{
		"state":    sess.State(),
		"restored": restored,
	}
	if err != nil {
		resp["load_error"] = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleDocState(c echo.Context) error {
	sess := a.editors.get(c.Param("id"))
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no open session"})
	}
	return c.JSON(http.StatusOK, sess.State())
}

// editorOp is a single editing operation in a batch. Which fields matter
// depends on the op name.
type editorOp struct {
	Op        string         `json:"op"`
	Field     string         `json:"field,omitempty"`
	Value     any            `json:"value,omitempty"`
	BlockID   string         `json:"block_id,omitempty"`
	BlockType string         `json:"block_type,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
	TargetID  string         `json:"target_id,omitempty"`
	Index     int            `json:"index,omitempty"`
	Direction string         `json:"direction,omitempty"`
}

type opsRequest struct {
	Ops []editorOp `json:"ops"`
}

// handleDocOps applies a batch of editing operations to the open session
// and returns the resulting state. Unknown op names fail the request;
// unknown meta fields and missing block ids are ignored, matching the
// session's own no-op behavior.
func (a *App) handleDocOps(c echo.Context) error {
	sess := a.editors.get(c.Param("id"))
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no open session"})
	}
	var req opsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	for _, op := range req.Ops {
		if err := applyOp(sess, op); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, sess.State())
}

func applyOp(sess *editor.Session, op editorOp) error {
	switch op.Op {
	case "set_title":
		sess.SetTitle(stringValue(op.Value))
	case "set_slug":
		sess.SetSlug(stringValue(op.Value))
	case "update_meta":
		sess.UpdateMeta(op.Field, op.Value)
	case "update_layout":
		sess.UpdateLayout(op.Field, op.Value)
	case "add_block":
		sess.AddBlock(document.BlockType(op.BlockType))
	case "update_block_props":
		sess.UpdateBlockProps(op.BlockID, op.Props)
	case "duplicate_block":
		sess.DuplicateBlock(op.BlockID)
	case "delete_block":
		sess.DeleteBlock(op.BlockID)
	case "move_block":
		sess.MoveBlock(op.BlockID, op.TargetID)
	case "reorder_block":
		sess.ReorderBlock(op.Index, editor.Direction(op.Direction))
	case "select_block":
		sess.SelectBlock(op.BlockID)
	case "set_panel":
		sess.SetPanel(editor.PanelTab(stringValue(op.Value)))
	case "set_viewport":
		sess.SetViewport(editor.Viewport(stringValue(op.Value)))
	default:
		return errors.New("unknown op: " + op.Op)
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func (a *App) handleDocSave(c echo.Context) error {
	routeID := c.Param("id")
	sess := a.editors.get(routeID)
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no open session"})
	}
	doc, err := sess.Save(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	a.afterPersist(routeID, doc.ID)
	return c.JSON(http.StatusOK, sess.State())
}

func (a *App) handleDocPublish(c echo.Context) error {
	routeID := c.Param("id")
	sess := a.editors.get(routeID)
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no open session"})
	}
	doc, err := sess.Publish(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	a.afterPersist(routeID, doc.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"state":    sess.State(),
		"location": "/blog/" + doc.Meta.Slug + "/",
	})
}

// afterPersist re-keys sessions saved under the "new" sentinel and drops
// the published-article cache so public pages pick up the change.
func (a *App) afterPersist(routeID, docID string) {
	key := routeID
	if key == "" {
		key = document.NewID
	}
	a.editors.rekey(key, docID)
	a.Cache.Invalidate()
}

func (a *App) handleDraftDiscard(c echo.Context) error {
	sess := a.editors.get(c.Param("id"))
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no open session"})
	}
	if err := sess.Discard(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.State())
}

// handleDocPreview renders the in-progress document as preview HTML,
// honoring the session's viewport and selected block.
func (a *App) handleDocPreview(c echo.Context) error {
	sess := a.editors.get(c.Param("id"))
	if sess == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no open session"})
	}
	st := sess.State()
	return Render(c, blocks.Preview(st.Document, st.SelectedBlock, string(st.Viewport)))
}

func (a *App) handleDocDelete(c echo.Context) error {
	id := c.Param("id")
	if err := a.Store.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	a.editors.drop(id)
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}
