package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/session"
)

// Uploader stores an image with the external image host.
type Uploader interface {
	Upload(ctx context.Context, filename string, src io.Reader) (models.Image, error)
}

type AdminHandler struct {
	Catalog      *catalog.Catalog
	API          *api.Client
	Uploader     Uploader
	SessionStore sessions.Store
	Templates    *TemplateCache
	PageSize     int
}

// render executes a page with the data every page shares. Pending flashes
// are consumed.
func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	cookie, _ := h.SessionStore.Get(r, sessionName)
	data["CsrfField"] = csrf.TemplateField(r)
	data["Flashes"] = GetFlash(cookie)
	data["Path"] = r.URL.Path
	if sess := currentSession(r); sess != nil {
		data["Session"] = sess
		data["IsAdmin"] = sess.IsAdmin()
	}
	if err := cookie.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}

	var buf bytes.Buffer
	if err := h.Templates.Render(&buf, name, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// flash queues a notification for the next rendered page.
func (h *AdminHandler) flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	cookie, _ := h.SessionStore.Get(r, sessionName)
	cookie.AddFlash(FlashMessage{Type: kind, Message: message})
	if err := cookie.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

func (h *AdminHandler) redirect(w http.ResponseWriter, r *http.Request, kind, message, to string) {
	h.flash(w, r, kind, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// failure turns a failed backend call into a flash. A rejected token ends the
// session, since the backend will refuse every further request; it reports
// whether that happened.
func (h *AdminHandler) failure(w http.ResponseWriter, r *http.Request, action string, err error) bool {
	slog.Error("Backend request failed", "action", action, "path", r.URL.Path, "error", err)
	if api.IsStatus(err, http.StatusUnauthorized) {
		h.endSession(w, r)
		h.flash(w, r, "error", "Your session has expired. Please sign in again.")
		return true
	}
	h.flash(w, r, "error", failureMessage(action, err))
	return false
}

func failureMessage(action string, err error) string {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		return "Failed to " + action + ": " + apiErr.Message
	case errors.Is(err, api.ErrUnsupportedImage):
		return err.Error()
	default:
		return "Failed to " + action + ". The backend could not be reached."
	}
}

// invalid re-renders a form with the per-field messages.
func (h *AdminHandler) invalid(w http.ResponseWriter, r *http.Request, name string, errs forms.Errors, data map[string]any) {
	data["Errors"] = errs
	h.render(w, r, http.StatusUnprocessableEntity, name, data)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.RefreshAll(r.Context()); err != nil && h.failure(w, r, "load the dashboard", err) {
		http.Redirect(w, r, signInPath, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard.html", map[string]any{
		"Stats":    h.Catalog.DashboardStats(),
		"Statuses": models.OrderStatuses,
	})
}

func (h *AdminHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found.html", nil)
}

func currentSession(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return sess
}
