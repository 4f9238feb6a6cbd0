package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

const categoriesPath = "/admin/categories"

func (h *AdminHandler) categoryTable() *listview.Table[models.Category] {
	t := catalog.CategoryTable(h.Catalog.BrandNames())
	t.PageSize = h.PageSize
	t.Actions = func(c models.Category) []listview.Action {
		return []listview.Action{
			editAction(categoriesPath, c.ID),
			toggleAction(categoriesPath, c.ID, c.Active),
			deleteAction(categoriesPath, c.ID),
		}
	}
	return t
}

func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Categories.Refresh, h.Catalog.Brands.Refresh) {
		return
	}
	p := buildList("Categories", categoriesPath, h.categoryTable(), h.Catalog.Categories.Snapshot(), parseQuery(r))
	brandsNotice(&p, h.Catalog.Brands.Snapshot().Err)
	h.listScreen(w, r, p, categoriesPath+"/new", true)
}

// categoryForm renders the form with the brands a category can belong to.
func (h *AdminHandler) categoryForm(w http.ResponseWriter, r *http.Request, status int, c models.Category, creating bool, errs forms.Errors) {
	selected := make([]string, len(c.Brands))
	for i, ref := range c.Brands {
		selected[i] = ref.ID
	}
	data := map[string]any{
		"Category": c,
		"Creating": creating,
		"Brands":   h.Catalog.Brands.Items(),
		"Selected": selected,
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.render(w, r, status, "category_form.html", data)
}

func (h *AdminHandler) NewCategory(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Brands.Refresh) {
		return
	}
	h.categoryForm(w, r, http.StatusOK, models.Category{}, true, nil)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.saveCategory(w, r, models.Category{}, true)
}

func (h *AdminHandler) EditCategory(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Brands.Refresh) {
		return
	}
	c, ok := lookup(h, w, r, h.Catalog.Categories, "category", categoriesPath)
	if !ok {
		return
	}
	h.categoryForm(w, r, http.StatusOK, c, false, nil)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, ok := lookup(h, w, r, h.Catalog.Categories, "category", categoriesPath)
	if !ok {
		return
	}
	h.saveCategory(w, r, existing, false)
}

func (h *AdminHandler) saveCategory(w http.ResponseWriter, r *http.Request, existing models.Category, creating bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	c, errs := forms.Category(r.PostForm)
	if !creating {
		c.ID = chi.URLParam(r, "id")
		c.Active = existing.Active
	}
	if !errs.Valid() {
		h.categoryForm(w, r, http.StatusUnprocessableEntity, c, creating, errs)
		return
	}

	var err error
	if creating {
		_, err = h.Catalog.Categories.Add(r.Context(), c)
	} else {
		_, err = h.Catalog.Categories.Save(r.Context(), c)
	}
	if err != nil {
		if h.failure(w, r, "save the category", err) {
			http.Redirect(w, r, signInPath, http.StatusSeeOther)
			return
		}
		h.categoryForm(w, r, http.StatusBadGateway, c, creating, nil)
		return
	}
	if creating {
		h.redirect(w, r, "success", "Category created successfully!", categoriesPath)
		return
	}
	h.redirect(w, r, "success", "Category updated successfully!", categoriesPath)
}
