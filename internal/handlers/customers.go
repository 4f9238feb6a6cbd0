package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

const customersPath = "/admin/customers"

var genders = []string{"male", "female", "other"}

func (h *AdminHandler) customerTable() *listview.Table[models.Customer] {
	t := catalog.CustomerTable()
	t.PageSize = h.PageSize
	t.Actions = func(c models.Customer) []listview.Action {
		return []listview.Action{editAction(customersPath, c.ID), deleteAction(customersPath, c.ID)}
	}
	return t
}

func (h *AdminHandler) Customers(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Customers.Refresh) {
		return
	}
	p := buildList("Customers", customersPath, h.customerTable(), h.Catalog.Customers.Snapshot(), parseQuery(r))
	h.listScreen(w, r, p, customersPath+"/new", true)
}

func (h *AdminHandler) customerForm(w http.ResponseWriter, r *http.Request, status int, c models.Customer, creating bool, errs forms.Errors) {
	c.Password = ""
	data := map[string]any{"Customer": c, "Creating": creating, "Genders": genders}
	if errs != nil {
		data["Errors"] = errs
	}
	h.render(w, r, status, "customer_form.html", data)
}

func (h *AdminHandler) NewCustomer(w http.ResponseWriter, r *http.Request) {
	h.customerForm(w, r, http.StatusOK, models.Customer{}, true, nil)
}

func (h *AdminHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.saveCustomer(w, r, true)
}

func (h *AdminHandler) EditCustomer(w http.ResponseWriter, r *http.Request) {
	c, ok := lookup(h, w, r, h.Catalog.Customers, "customer", customersPath)
	if !ok {
		return
	}
	h.customerForm(w, r, http.StatusOK, c, false, nil)
}

func (h *AdminHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	if _, ok := lookup(h, w, r, h.Catalog.Customers, "customer", customersPath); !ok {
		return
	}
	h.saveCustomer(w, r, false)
}

// saveCustomer sends a customer form. An empty password on edit leaves the
// stored one untouched.
func (h *AdminHandler) saveCustomer(w http.ResponseWriter, r *http.Request, creating bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	c, errs := forms.Customer(r.PostForm, creating)
	if !creating {
		c.ID = chi.URLParam(r, "id")
	}
	if !errs.Valid() {
		h.customerForm(w, r, http.StatusUnprocessableEntity, c, creating, errs)
		return
	}

	var err error
	if creating {
		_, err = h.Catalog.Customers.Add(r.Context(), c)
	} else {
		_, err = h.Catalog.Customers.Save(r.Context(), c)
	}
	if err != nil {
		if h.failure(w, r, "save the customer", err) {
			http.Redirect(w, r, signInPath, http.StatusSeeOther)
			return
		}
		h.customerForm(w, r, http.StatusBadGateway, c, creating, nil)
		return
	}
	if creating {
		h.redirect(w, r, "success", "Customer created successfully!", customersPath)
		return
	}
	h.redirect(w, r, "success", "Customer updated successfully!", customersPath)
}
