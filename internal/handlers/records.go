package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/entity"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/export"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

const maxUploadBytes = 10 << 20

// refresh reloads collections before a screen is rendered. Ordinary failures
// stay in the store and are shown by the screen; a rejected token ends the
// session, in which case the response is already written and false returned.
func (h *AdminHandler) refresh(w http.ResponseWriter, r *http.Request, loads ...func(context.Context) error) bool {
	g, ctx := errgroup.WithContext(r.Context())
	for _, load := range loads {
		g.Go(func() error { return load(ctx) })
	}
	err := g.Wait()
	if err == nil {
		return true
	}
	if api.IsStatus(err, http.StatusUnauthorized) {
		h.failure(w, r, "load data", err)
		http.Redirect(w, r, signInPath, http.StatusSeeOther)
		return false
	}
	slog.Warn("Refresh failed", "path", r.URL.Path, "error", err)
	return true
}

// mutationFailed flashes a failed change and sends the user back.
func (h *AdminHandler) mutationFailed(w http.ResponseWriter, r *http.Request, action string, err error, back string) {
	if h.failure(w, r, action, err) {
		back = signInPath
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// lookup loads the record named by the id route parameter. When it fails the
// response is written and ok is false.
func lookup[T entity.Record](h *AdminHandler, w http.ResponseWriter, r *http.Request, res *catalog.Resource[T], noun, back string) (v T, ok bool) {
	v, err := res.Lookup(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		return v, true
	case api.IsStatus(err, http.StatusNotFound):
		h.NotFound(w, r)
	default:
		h.mutationFailed(w, r, "load the "+noun, err, back)
	}
	return v, false
}

func (h *AdminHandler) listScreen(w http.ResponseWriter, r *http.Request, p listPage, newURL string, exportable bool) {
	p.NewURL = newURL
	if exportable {
		q := parseQuery(r)
		p.ExportURL = queryURL(p.Base+"/export.xlsx", listview.Query{Text: q.Text, Sort: q.Sort})
	}
	h.render(w, r, http.StatusOK, "list.html", map[string]any{"List": p})
}

func toggleRecord[T entity.Record](h *AdminHandler, res *catalog.Resource[T], label, back string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := res.Toggle(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.mutationFailed(w, r, "update the "+res.Name()+" status", err, back)
			return
		}
		h.redirect(w, r, "success", label+" status updated successfully.", back)
	}
}

func deleteRecord[T entity.Record](h *AdminHandler, res *catalog.Resource[T], label, back string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := res.Remove(r.Context(), id); err != nil {
			h.mutationFailed(w, r, "delete the record", err, back)
			return
		}
		slog.Info("Record deleted", "collection", res.Name(), "id", id)
		h.redirect(w, r, "success", label+" deleted successfully.", back)
	}
}

// exportRecords streams the filtered and sorted collection, all pages, as a
// spreadsheet.
func exportRecords[T entity.Record](h *AdminHandler, res *catalog.Resource[T], table func() *listview.Table[T], back string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := res.Refresh(r.Context()); err != nil {
			h.mutationFailed(w, r, "export "+res.Name(), err, back)
			return
		}
		q := parseQuery(r)
		t := table()
		items, _ := applyQuery(t, res.Items(), &q)
		export.Attachment(w, res.Name()+".xlsx")
		if err := export.Write(w, res.Name(), t, items); err != nil {
			slog.Error("Failed to write export", "collection", res.Name(), "error", err)
		}
	}
}

// parseUploadForm accepts both multipart and urlencoded submissions.
func parseUploadForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formFiles returns the non-empty files submitted under field.
func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var files []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Size > 0 {
			files = append(files, fh)
		}
	}
	return files
}

// uploadAll sends files to the image host concurrently. The images keep the
// order of the files.
func (h *AdminHandler) uploadAll(ctx context.Context, files []*multipart.FileHeader) ([]models.Image, error) {
	images := make([]models.Image, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", fh.Filename, err)
			}
			defer f.Close()
			img, err := h.Uploader.Upload(ctx, fh.Filename, f)
			if err != nil {
				return fmt.Errorf("upload %s: %w", fh.Filename, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
