package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the router of the dashboard. Sign-in attempts go through
// limiter; metrics is mounted on /metrics when set.
func (h *AdminHandler) Routes(limiter *RateLimiter, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/sign-in", h.SignInGet)
		if limiter != nil {
			r.With(limiter.Middleware).Post("/sign-in", h.SignInPost)
		} else {
			r.Post("/sign-in", h.SignInPost)
		}
		r.With(h.RequireAdmin).Get("/sign-up", h.SignUpGet)
		r.With(h.RequireAdmin).Post("/sign-up", h.SignUpPost)
		r.Post("/logout", h.Logout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/", h.Dashboard)

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", h.Brands)
			r.Post("/", h.CreateBrand)
			r.Get("/new", h.NewBrand)
			r.Get("/export.xlsx", exportRecords(h, h.Catalog.Brands, h.brandTable, brandsPath))
			r.Get("/{id}/edit", h.EditBrand)
			r.Post("/{id}", h.UpdateBrand)
			r.Post("/{id}/toggle", toggleRecord(h, h.Catalog.Brands, "Brand", brandsPath))
			r.Post("/{id}/delete", deleteRecord(h, h.Catalog.Brands, "Brand", brandsPath))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories)
			r.Post("/", h.CreateCategory)
			r.Get("/new", h.NewCategory)
			r.Get("/export.xlsx", exportRecords(h, h.Catalog.Categories, h.categoryTable, categoriesPath))
			r.Get("/{id}/edit", h.EditCategory)
			r.Post("/{id}", h.UpdateCategory)
			r.Post("/{id}/toggle", toggleRecord(h, h.Catalog.Categories, "Category", categoriesPath))
			r.Post("/{id}/delete", deleteRecord(h, h.Catalog.Categories, "Category", categoriesPath))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products)
			r.Post("/", h.CreateProduct)
			r.Get("/new", h.NewProduct)
			r.Get("/export.xlsx", exportRecords(h, h.Catalog.Products, h.productTable, productsPath))
			r.Get("/{id}/edit", h.EditProduct)
			r.Post("/{id}", h.UpdateProduct)
			r.Get("/{id}/images", h.ProductImages)
			r.Post("/{id}/images", h.ReplaceProductImages)
			r.Post("/{id}/toggle", toggleRecord(h, h.Catalog.Products, "Product", productsPath))
			r.Post("/{id}/delete", deleteRecord(h, h.Catalog.Products, "Product", productsPath))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.Customers)
			r.Post("/", h.CreateCustomer)
			r.Get("/new", h.NewCustomer)
			r.Get("/export.xlsx", exportRecords(h, h.Catalog.Customers, h.customerTable, customersPath))
			r.Get("/{id}/edit", h.EditCustomer)
			r.Post("/{id}", h.UpdateCustomer)
			r.Post("/{id}/delete", deleteRecord(h, h.Catalog.Customers, "Customer", customersPath))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders)
			r.Get("/export.xlsx", exportRecords(h, h.Catalog.Orders, h.orderTable, ordersPath))
			r.Get("/{id}", h.OrderDetail)
			r.Post("/{id}/status", h.UpdateOrderStatus)
			r.Post("/{id}/delete", deleteRecord(h, h.Catalog.Orders, "Order", ordersPath))
		})
	})

	return r
}
