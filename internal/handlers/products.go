package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

const productsPath = "/admin/products"

func (h *AdminHandler) productTable() *listview.Table[models.Product] {
	t := catalog.ProductTable(h.Catalog.BrandNames())
	t.PageSize = h.PageSize
	t.Actions = func(p models.Product) []listview.Action {
		return []listview.Action{
			editAction(productsPath, p.ID),
			{Name: "images", Label: "Images", Method: http.MethodGet, URL: productsPath + "/" + url.PathEscape(p.ID) + "/images"},
			toggleAction(productsPath, p.ID, p.Active),
			deleteAction(productsPath, p.ID),
		}
	}
	return t
}

func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Products.Refresh, h.Catalog.Brands.Refresh) {
		return
	}
	p := buildList("Products", productsPath, h.productTable(), h.Catalog.Products.Snapshot(), parseQuery(r))
	brandsNotice(&p, h.Catalog.Brands.Snapshot().Err)
	h.listScreen(w, r, p, productsPath+"/new", true)
}

// sizePrices maps each offered size to its price for the form.
func sizePrices(p models.Product) (prices map[string]float64, offered map[string]bool) {
	prices = make(map[string]float64, len(p.Sizes))
	offered = make(map[string]bool, len(p.Sizes))
	for _, s := range p.Sizes {
		prices[s.Size] = s.Price
		offered[s.Size] = true
	}
	return prices, offered
}

func (h *AdminHandler) productForm(w http.ResponseWriter, r *http.Request, status int, p models.Product, creating bool, errs forms.Errors) {
	prices, offered := sizePrices(p)
	data := map[string]any{
		"Product":  p,
		"Creating": creating,
		"Brands":   h.Catalog.Brands.Items(),
		"Sizes":    models.Sizes,
		"Prices":   prices,
		"Offered":  offered,
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.render(w, r, status, "product_form.html", data)
}

func (h *AdminHandler) NewProduct(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Brands.Refresh) {
		return
	}
	h.productForm(w, r, http.StatusOK, models.Product{}, true, nil)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, models.Product{}, true)
}

func (h *AdminHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Brands.Refresh) {
		return
	}
	p, ok := lookup(h, w, r, h.Catalog.Products, "product", productsPath)
	if !ok {
		return
	}
	h.productForm(w, r, http.StatusOK, p, false, nil)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	existing, ok := lookup(h, w, r, h.Catalog.Products, "product", productsPath)
	if !ok {
		return
	}
	h.saveProduct(w, r, existing, false)
}

// saveProduct sends a product form. New products upload their images first;
// an edit keeps the images and the active flag of the existing record.
func (h *AdminHandler) saveProduct(w http.ResponseWriter, r *http.Request, existing models.Product, creating bool) {
	if err := parseUploadForm(r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	files := formFiles(r, "images")
	if !creating {
		files = nil
	}
	p, errs := forms.Product(r.PostForm, creating, len(files))
	if !creating {
		p.ID = chi.URLParam(r, "id")
		p.Active = existing.Active
		p.Images = existing.Images
	}
	if !errs.Valid() {
		h.productForm(w, r, http.StatusUnprocessableEntity, p, creating, errs)
		return
	}

	if creating {
		images, err := h.uploadAll(r.Context(), files)
		if err != nil {
			slog.Error("Product image upload failed", "error", err)
			h.flash(w, r, "error", failureMessage("upload the images", err))
			h.productForm(w, r, http.StatusBadGateway, p, creating, nil)
			return
		}
		p.Images = images
	}

	var err error
	if creating {
		_, err = h.Catalog.Products.Add(r.Context(), p)
	} else {
		_, err = h.Catalog.Products.Save(r.Context(), p)
	}
	if err != nil {
		if h.failure(w, r, "save the product", err) {
			http.Redirect(w, r, signInPath, http.StatusSeeOther)
			return
		}
		h.productForm(w, r, http.StatusBadGateway, p, creating, nil)
		return
	}
	if creating {
		h.redirect(w, r, "success", "Product created successfully!", productsPath)
		return
	}
	h.redirect(w, r, "success", "Product updated successfully!", productsPath)
}

func (h *AdminHandler) ProductImages(w http.ResponseWriter, r *http.Request) {
	p, ok := lookup(h, w, r, h.Catalog.Products, "product", productsPath)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "product_images.html", map[string]any{"Product": p})
}

// ReplaceProductImages stores the kept images followed by the new uploads as
// the product's image list.
func (h *AdminHandler) ReplaceProductImages(w http.ResponseWriter, r *http.Request) {
	p, ok := lookup(h, w, r, h.Catalog.Products, "product", productsPath)
	if !ok {
		return
	}
	if err := parseUploadForm(r); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	keep := r.PostForm["keep"]
	images := make([]models.Image, 0, len(p.Images))
	for _, img := range p.Images {
		if slices.Contains(keep, img.PublicID) {
			images = append(images, img)
		}
	}

	files := formFiles(r, "images")
	if len(images)+len(files) == 0 {
		h.invalid(w, r, "product_images.html", forms.Errors{"images": "At least one image is required."}, map[string]any{"Product": p})
		return
	}
	uploaded, err := h.uploadAll(r.Context(), files)
	if err != nil {
		slog.Error("Product image upload failed", "product_id", p.ID, "error", err)
		h.flash(w, r, "error", failureMessage("upload the images", err))
		h.render(w, r, http.StatusBadGateway, "product_images.html", map[string]any{"Product": p})
		return
	}
	images = append(images, uploaded...)

	back := productsPath + "/" + url.PathEscape(p.ID) + "/images"
	if _, err := h.Catalog.ReplaceProductImages(r.Context(), p.ID, images); err != nil {
		h.mutationFailed(w, r, "update the product images", err, back)
		return
	}
	h.redirect(w, r, "success", "Product images updated successfully!", productsPath)
}
