package catalog

import (
	"strings"
	"time"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

// The tables below declare the columns of each list screen and export. Row
// actions depend on the surface and are attached by the caller.

func BrandTable() *listview.Table[models.Brand] {
	return &listview.Table[models.Brand]{Fields: []listview.Field[models.Brand]{
		listview.Text("name", "Name", func(b models.Brand) string { return b.Name }),
		listview.Text("tagline", "Tagline", func(b models.Brand) string { return b.Tagline }),
		listview.Text("description", "Description", func(b models.Brand) string { return b.Description }).NoSort(),
		listview.Flag("active", "Status", func(b models.Brand) bool { return b.Active }),
		listview.Date("updatedAt", "Updated", func(b models.Brand) time.Time { return b.UpdatedAt }),
	}}
}

func CategoryTable(brandName func(models.Ref) string) *listview.Table[models.Category] {
	return &listview.Table[models.Category]{Fields: []listview.Field[models.Category]{
		listview.Text("name", "Name", func(c models.Category) string { return c.Name }),
		listview.Text("description", "Description", func(c models.Category) string { return c.Description }).NoSort(),
		listview.Text("brands", "Brands", func(c models.Category) string {
			names := make([]string, len(c.Brands))
			for i, ref := range c.Brands {
				names[i] = brandName(ref)
			}
			return strings.Join(names, ", ")
		}),
		listview.Flag("active", "Status", func(c models.Category) bool { return c.Active }),
		listview.Date("updatedAt", "Updated", func(c models.Category) time.Time { return c.UpdatedAt }),
	}}
}

// ProductTable shows the brand through brandName, which resolves references
// the backend did not populate.
func ProductTable(brandName func(models.Ref) string) *listview.Table[models.Product] {
	return &listview.Table[models.Product]{Fields: []listview.Field[models.Product]{
		listview.Text("name", "Name", func(p models.Product) string { return p.Name }),
		listview.Text("brand", "Brand", func(p models.Product) string { return brandName(p.Brand) }),
		listview.Number("price", "Price from", func(p models.Product) float64 { return p.MinPrice() }),
		listview.Number("discount", "Discount %", func(p models.Product) float64 { return p.Discount }),
		listview.Flag("active", "Status", func(p models.Product) bool { return p.Active }),
		listview.Date("updatedAt", "Updated", func(p models.Product) time.Time { return p.UpdatedAt }),
	}}
}

func CustomerTable() *listview.Table[models.Customer] {
	return &listview.Table[models.Customer]{Fields: []listview.Field[models.Customer]{
		listview.Text("firstName", "First name", func(c models.Customer) string { return c.FirstName }),
		listview.Text("lastName", "Last name", func(c models.Customer) string { return c.LastName }),
		listview.Text("email", "Email", func(c models.Customer) string { return c.Email }),
		listview.Text("phoneNumber", "Phone", func(c models.Customer) string { return c.PhoneNumber }),
		listview.Text("gender", "Gender", func(c models.Customer) string { return c.Gender }),
		listview.Text("birthdate", "Birthdate", func(c models.Customer) string { return c.Birthdate }),
		listview.Date("createdAt", "Joined", func(c models.Customer) time.Time { return c.CreatedAt }),
	}}
}

func OrderTable() *listview.Table[models.Order] {
	return &listview.Table[models.Order]{Fields: []listview.Field[models.Order]{
		listview.Text("id", "Order", func(o models.Order) string { return o.ID }),
		listview.Text("customer", "Customer", func(o models.Order) string { return o.CustomerName() }),
		listview.Number("totalAmount", "Total", func(o models.Order) float64 { return o.TotalAmount }),
		listview.Text("orderStatus", "Status", func(o models.Order) string { return o.Status }),
		listview.Date("createdAt", "Placed", func(o models.Order) time.Time { return o.CreatedAt }),
	}}
}

// BrandNames resolves brand references against the brands held locally.
func (c *Catalog) BrandNames() func(models.Ref) string {
	names := make(map[string]string)
	for _, b := range c.Brands.Items() {
		names[b.ID] = b.Name
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
