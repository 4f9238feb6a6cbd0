package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

const brandsPath = "/admin/brands"

func (h *AdminHandler) brandTable() *listview.Table[models.Brand] {
	t := catalog.BrandTable()
	t.PageSize = h.PageSize
	t.Actions = func(b models.Brand) []listview.Action {
		return []listview.Action{
			editAction(brandsPath, b.ID),
			toggleAction(brandsPath, b.ID, b.Active),
			deleteAction(brandsPath, b.ID),
		}
	}
	return t
}

func (h *AdminHandler) Brands(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Brands.Refresh) {
		return
	}
	p := buildList("Brands", brandsPath, h.brandTable(), h.Catalog.Brands.Snapshot(), parseQuery(r))
	h.listScreen(w, r, p, brandsPath+"/new", true)
}

func (h *AdminHandler) NewBrand(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "brand_form.html", map[string]any{"Brand": models.Brand{}, "Creating": true})
}

func (h *AdminHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	h.saveBrand(w, r, models.Brand{}, true)
}

func (h *AdminHandler) EditBrand(w http.ResponseWriter, r *http.Request) {
	b, ok := lookup(h, w, r, h.Catalog.Brands, "brand", brandsPath)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "brand_form.html", map[string]any{"Brand": b})
}

func (h *AdminHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	existing, ok := lookup(h, w, r, h.Catalog.Brands, "brand", brandsPath)
	if !ok {
		return
	}
	h.saveBrand(w, r, existing, false)
}

// saveBrand validates the submitted form, uploads a new image when one was
// chosen and sends the brand to the backend. The active flag only changes
// through the toggle.
func (h *AdminHandler) saveBrand(w http.ResponseWriter, r *http.Request, existing models.Brand, creating bool) {
	if err := parseUploadForm(r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	files := formFiles(r, "imageFile")
	b, errs := forms.Brand(r.PostForm, len(files) > 0 || existing.Image != "")
	data := map[string]any{"Brand": b, "Creating": creating}
	if !creating {
		b.ID = chi.URLParam(r, "id")
		b.Active = existing.Active
		if b.Image == "" {
			b.Image = existing.Image
		}
		data["Brand"] = b
	}
	if !errs.Valid() {
		h.invalid(w, r, "brand_form.html", errs, data)
		return
	}

	if len(files) > 0 {
		images, err := h.uploadAll(r.Context(), files[:1])
		if err != nil {
			slog.Error("Brand image upload failed", "error", err)
			h.flash(w, r, "error", failureMessage("upload the image", err))
			h.render(w, r, http.StatusBadGateway, "brand_form.html", data)
			return
		}
		b.Image = images[0].URL
	}

	var err error
	if creating {
		_, err = h.Catalog.Brands.Add(r.Context(), b)
	} else {
		_, err = h.Catalog.Brands.Save(r.Context(), b)
	}
	if err != nil {
		if h.failure(w, r, "save the brand", err) {
			http.Redirect(w, r, signInPath, http.StatusSeeOther)
			return
		}
		h.render(w, r, http.StatusBadGateway, "brand_form.html", data)
		return
	}
	if creating {
		h.redirect(w, r, "success", "Brand created successfully!", brandsPath)
		return
	}
	h.redirect(w, r, "success", "Brand updated successfully!", brandsPath)
}
