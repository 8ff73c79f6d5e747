package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/sydlexius/spotilytics/internal/api/middleware"
	"github.com/sydlexius/spotilytics/internal/image"
	"github.com/sydlexius/spotilytics/internal/session"
	"github.com/sydlexius/spotilytics/internal/version"
	"github.com/sydlexius/spotilytics/internal/view"
	"github.com/sydlexius/spotilytics/web/templates"
)

const sessionCookieName = "spotilytics_session"

// maxActionBody caps JSON action request bodies.
const maxActionBody = 64 << 10

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  version.Version,
		"commit":   version.Commit,
		"time":     time.Now().UTC().Format(time.RFC3339),
		"sessions": r.store.Len(),
		"cache":    r.cache.Stats(),
	})
}

// assets returns cache-busted asset paths for templates.
func (r *Router) assets() templates.AssetPaths {
	return templates.AssetPaths{
		CSS:     r.staticAssets.Path("/css/styles.css"),
		Charts:  r.staticAssets.Path("/js/charts.js"),
		Favicon: r.staticAssets.Path("/img/favicon.svg"),
		Icons: templates.IconPaths{
			Favicon16:  r.staticAssets.Path("/img/favicon-16x16.png"),
			Favicon32:  r.staticAssets.Path("/img/favicon-32x32.png"),
			AppleTouch: r.staticAssets.Path("/img/apple-touch-icon.png"),
			Large:      r.staticAssets.Path("/img/icon-512x512.png"),
		},
		ChartJS: r.chartJSURL,
	}
}

func (r *Router) layout(req *http.Request) templates.Layout {
	return templates.Layout{
		Assets:    r.assets(),
		BasePath:  r.basePath,
		CSRFToken: middleware.TokenFromContext(req.Context()),
	}
}

// sessionID returns the caller's live session, starting one and setting the
// cookie when the request carries none or an expired one.
func (r *Router) sessionID(w http.ResponseWriter, req *http.Request) string {
	var current string
	if c, err := req.Cookie(sessionCookieName); err == nil {
		current = c.Value
	}

	sid, created := r.store.Ensure(current)
	if created {
		path := r.basePath + "/"
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sid,
			Path:     path,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.secureCookies,
		})
		r.logger.Debug("session started", slog.Bool("replaced", current != ""))
	}
	return sid
}

// apply runs ev against the session's state and stores the result.
func (r *Router) apply(ctx context.Context, sid string, ev session.Event) (session.State, error) {
	return r.store.Update(sid, func(s session.State) (session.State, error) {
		return r.controller.Apply(ctx, s, ev)
	})
}

// page builds the page for the session's current state.
func (r *Router) page(ctx context.Context, sid string) (view.Page, error) {
	state, err := r.store.Get(sid)
	if err != nil {
		return view.Page{}, err
	}
	return r.builder.Build(ctx, state), nil
}

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	sid := r.sessionID(w, req)
	p, err := r.page(req.Context(), sid)
	if err != nil {
		r.logger.Error("loading session", "error", err)
		writeError(w, req, http.StatusInternalServerError, "internal error")
		return
	}
	renderTempl(w, req, templates.IndexPage(r.layout(req), p))
}

// handleFormAction applies a navigation action posted from an HTML form and
// redirects back to the page. Rejected actions and catalog failures are
// reflected in the rendered page, not in the response status.
func (r *Router) handleFormAction(action session.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sid := r.sessionID(w, req)
		ev := session.Event{
			Action:   action,
			Text:     req.PostFormValue("text"),
			ArtistID: req.PostFormValue("artist_id"),
		}
		if _, err := r.apply(req.Context(), sid, ev); err != nil {
			r.logActionError(ev, err)
		}
		http.Redirect(w, req, r.basePath+"/", http.StatusSeeOther)
	}
}

func (r *Router) handleAPIView(w http.ResponseWriter, req *http.Request) {
	sid := r.sessionID(w, req)
	p, err := r.page(req.Context(), sid)
	if err != nil {
		r.logger.Error("loading session", "error", err)
		writeError(w, req, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) handleAPIAction(w http.ResponseWriter, req *http.Request) {
	var ev session.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxActionBody)).Decode(&ev); err != nil {
		writeError(w, req, http.StatusBadRequest, "invalid request body")
		return
	}

	sid := r.sessionID(w, req)
	_, err := r.apply(req.Context(), sid, ev)
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		writeError(w, req, http.StatusConflict, err.Error())
		return
	case errors.Is(err, session.ErrUnknownArtist), errors.Is(err, session.ErrUnknownAction):
		writeError(w, req, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, req, http.StatusInternalServerError, "internal error")
		return
	case err != nil:
		// Catalog failure: the page carries the message.
		r.logActionError(ev, err)
	}

	p, err := r.page(req.Context(), sid)
	if err != nil {
		r.logger.Error("loading session", "error", err)
		writeError(w, req, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (r *Router) logActionError(ev session.Event, err error) {
	attrs := []any{slog.String("action", string(ev.Action)), slog.String("error", err.Error())}
	if errors.Is(err, session.ErrInvalidTransition) || errors.Is(err, session.ErrUnknownArtist) ||
		errors.Is(err, session.ErrUnknownAction) {
		r.logger.Debug("action rejected", attrs...)
		return
	}
	r.logger.Warn("action failed", attrs...)
}

func (r *Router) handleSquareImage(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	src := q.Get("src")
	if src == "" {
		writeError(w, req, http.StatusBadRequest, "src is required")
		return
	}

	size := view.ProfileImageSize
	if s := q.Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || !view.ValidImageSize(n) {
			writeError(w, req, http.StatusBadRequest, "size must be "+strconv.Itoa(view.CompareImageSize)+" or "+strconv.Itoa(view.ProfileImageSize))
			return
		}
		size = n
	}

	th, err := r.thumbnails.Square(req.Context(), src, size)
	if err != nil {
		if errors.Is(err, image.ErrHostNotAllowed) {
			writeError(w, req, http.StatusBadRequest, "image source not allowed")
			return
		}
		r.logger.Warn("rendering thumbnail", slog.String("src", src), slog.String("error", err.Error()))
		writeError(w, req, http.StatusBadGateway, "image unavailable")
		return
	}

	w.Header().Set("Content-Type", image.ContentType(th.Format))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(th.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(th.Data)
}

func renderTempl(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// writeError sends an error response: plain text for browsers asking for
// HTML, JSON otherwise.
func writeError(w http.ResponseWriter, req *http.Request, status int, message string) {
	if strings.Contains(req.Header.Get("Accept"), "text/html") {
		http.Error(w, message, status)
		return
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
