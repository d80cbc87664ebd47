package titled

import (
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"

	apperrors "github.com/louisbranch/pagetitle/internal/platform/errors"
	"github.com/louisbranch/pagetitle/internal/platform/requestctx"
	"github.com/louisbranch/pagetitle/internal/services/shared/htmx"
	"github.com/louisbranch/pagetitle/internal/services/shared/route"
	"github.com/louisbranch/pagetitle/internal/services/titled/platform/httpx"
	"github.com/louisbranch/pagetitle/internal/services/titled/platform/observability"
	"github.com/louisbranch/pagetitle/internal/services/titled/platform/sessioncookie"
	"github.com/louisbranch/pagetitle/internal/services/titled/session"
	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
	"github.com/louisbranch/pagetitle/internal/services/titled/templates"
	"github.com/louisbranch/pagetitle/internal/services/titled/view"
	"github.com/louisbranch/pagetitle/internal/title"
)

// maxCascadeBody bounds POST /api/cascade payloads.
const maxCascadeBody = 1 << 20

type handler struct {
	siteMap  *sitemap.Map
	sessions *session.Store
	logger   *slog.Logger
}

// CascadeRequest is the body of POST /api/cascade. Parts is decoded loosely so
// malformed entries can be dropped one by one.
type CascadeRequest struct {
	Parts     any    `json:"parts"`
	Separator string `json:"separator,omitempty"`
}

// CascadeResponse is the body returned by POST /api/cascade.
type CascadeResponse struct {
	Title string `json:"title"`
}

// TitleState is the body returned by GET /api/title.
type TitleState struct {
	SessionID string       `json:"session_id"`
	Title     string       `json:"title"`
	Separator string       `json:"separator"`
	Parts     []title.Part `json:"parts"`
	Views     []string     `json:"views"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) cascade(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCascadeBody))
	decoder.UseNumber()
	var req CascadeRequest
	if err := decoder.Decode(&req); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeInvalidArgument, "decode cascade request", err))
		return
	}
	if req.Separator != "" {
		if err := title.ValidateSeparator(req.Separator); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	cascade, err := title.BuildRaw(req.Parts, req.Separator, h.logger)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	observability.RecordCascade(r, cascade)
	_ = httpx.WriteJSON(w, http.StatusOK, CascadeResponse{Title: cascade})
}

func (h *handler) currentTitle(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.existingSession(r)
	if !ok {
		httpx.WriteError(w, apperrors.New(apperrors.CodeNotFound, "no title session for this browser"))
		return
	}
	var state TitleState
	_ = sess.Do(func(tree *view.Tree) error {
		snapshot := tree.Registry().Snapshot()
		state = TitleState{
			SessionID: sess.ID(),
			Title:     tree.Title(),
			Separator: snapshot.Separator,
			Parts:     snapshot.Parts,
			Views:     make([]string, 0, len(tree.Mounted())),
		}
		for _, v := range tree.Mounted() {
			state.Views = append(state.Views, v.ID)
		}
		return nil
	})
	_ = httpx.WriteJSON(w, http.StatusOK, state)
}

func (h *handler) clearSession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.existingSession(r); ok {
		h.sessions.Delete(sess.ID())
	}
	sessioncookie.Clear(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) existingSession(r *http.Request) (*session.Session, bool) {
	id, ok := sessioncookie.Read(r)
	if !ok {
		return nil, false
	}
	return h.sessions.Get(id)
}

// page mounts the view chain for the request path into the browser's tree and
// renders it. HTMX navigations keep shared ancestors mounted; full loads start
// from a cleared registry.
func (h *handler) page(w http.ResponseWriter, r *http.Request) {
	if route.RedirectTrailingSlash(w, r) {
		return
	}
	chain, found := h.siteMap.Resolve(r.URL.Path)
	status := http.StatusOK
	if !found {
		status = http.StatusNotFound
	}

	id, _ := sessioncookie.Read(r)
	sess, created := h.sessions.GetOrCreate(id)
	if created {
		sessioncookie.Write(w, r, sess.ID())
	}

	err := sess.Do(func(tree *view.Tree) error {
		var err error
		if htmx.IsHTMXRequest(r) && !created && len(tree.Mounted()) > 0 {
			err = tree.Navigate(chain)
		} else {
			err = tree.Reload(chain)
		}
		if err != nil {
			return err
		}

		cascade := tree.Title()
		observability.RecordCascade(r, cascade)
		ctx := requestctx.WithSessionID(r.Context(), sess.ID())
		ctx = requestctx.WithRegistry(ctx, tree.Registry())

		content := templates.Page(templates.PageOptions{Title: cascade, Views: mountedViews(tree)})
		return htmx.RenderPage(w, r.WithContext(ctx), htmx.Page{
			Title:      cascade,
			StatusCode: status,
			Fragment:   content,
			Full:       templates.Layout(templates.LayoutOptions{Title: cascade, Content: content}),
		})
	})
	if err != nil {
		log.Printf("render page path=%s session=%s: %v", r.URL.Path, sess.ID(), err)
		if errors.Is(err, htmx.ErrResponseStarted) {
			return
		}
		httpx.WriteError(w, err)
	}
}

func mountedViews(tree *view.Tree) []templates.MountedView {
	mounted := tree.Mounted()
	views := make([]templates.MountedView, 0, len(mounted))
	for _, v := range mounted {
		level, _ := tree.Level(v.ID)
		views = append(views, templates.MountedView{View: v, Level: level})
	}
	return views
}
