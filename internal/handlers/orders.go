package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

const ordersPath = "/admin/orders"

func (h *AdminHandler) orderTable() *listview.Table[models.Order] {
	t := catalog.OrderTable()
	t.PageSize = h.PageSize
	t.Actions = func(o models.Order) []listview.Action {
		return []listview.Action{
			{Name: "view", Label: "View", Method: http.MethodGet, URL: ordersPath + "/" + url.PathEscape(o.ID)},
			deleteAction(ordersPath, o.ID),
		}
	}
	return t
}

func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if !h.refresh(w, r, h.Catalog.Orders.Refresh) {
		return
	}
	p := buildList("Orders", ordersPath, h.orderTable(), h.Catalog.Orders.Snapshot(), parseQuery(r))
	h.listScreen(w, r, p, "", true)
}

// productNames resolves line item products the backend did not populate.
func (h *AdminHandler) productNames() func(models.Ref) string {
	names := make(map[string]string)
	for _, p := range h.Catalog.Products.Items() {
		names[p.ID] = p.Name
	}
	return func(ref models.Ref) string {
		if ref.Name != "" {
			return ref.Name
		}
		if name, ok := names[ref.ID]; ok {
			return name
		}
		return ref.ID
	}
}

func (h *AdminHandler) orderDetail(w http.ResponseWriter, r *http.Request, status int, o models.Order, errs forms.Errors) {
	data := map[string]any{
		"Order":       o,
		"Statuses":    models.OrderStatuses,
		"ProductName": h.productNames(),
	}
	if errs != nil {
		data["Errors"] = errs
	}
	h.render(w, r, status, "order_detail.html", data)
}

func (h *AdminHandler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	o, ok := lookup(h, w, r, h.Catalog.Orders, "order", ordersPath)
	if !ok {
		return
	}
	h.orderDetail(w, r, http.StatusOK, o, nil)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	o, ok := lookup(h, w, r, h.Catalog.Orders, "order", ordersPath)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	status, errs := forms.OrderStatus(r.PostForm)
	if !errs.Valid() {
		h.orderDetail(w, r, http.StatusUnprocessableEntity, o, errs)
		return
	}

	detail := ordersPath + "/" + url.PathEscape(o.ID)
	if _, err := h.Catalog.SetOrderStatus(r.Context(), o.ID, status); err != nil {
		h.mutationFailed(w, r, "update the order status", err, detail)
		return
	}
	slog.Info("Order status updated", "order_id", o.ID, "from", o.Status, "to", status)
	h.redirect(w, r, "success", "Order status updated successfully!", detail)
}
