package catalog

import (
	"cmp"
	"slices"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

// RecentCount is the length of the "recent" panels.
const RecentCount = 3

type DashboardStats struct {
	TotalBrands     int
	TotalCategories int
	TotalProducts   int
	ActiveProducts  int
	TotalCustomers  int
	TotalOrders     int
	OrdersByStatus  map[string]int
	Revenue         float64

	RecentBrands     []models.Brand
	RecentCategories []models.Category
	RecentProducts   []models.Product

	ProductOrderCounts []ProductOrderCount
}

type ProductOrderCount struct {
	ProductID  string
	Name       string
	OrderCount int
}

// DashboardStats summarises what the stores currently hold. Revenue leaves
// out cancelled orders.
func (c *Catalog) DashboardStats() *DashboardStats {
	products := c.Products.Items()
	orders := c.Orders.Items()

	stats := &DashboardStats{
		TotalBrands:      len(c.Brands.Items()),
		TotalCategories:  len(c.Categories.Items()),
		TotalProducts:    len(products),
		TotalCustomers:   len(c.Customers.Items()),
		TotalOrders:      len(orders),
		OrdersByStatus:   make(map[string]int, len(models.OrderStatuses)),
		RecentBrands:     c.Brands.Recent(RecentCount),
		RecentCategories: c.Categories.Recent(RecentCount),
		RecentProducts:   c.Products.Recent(RecentCount),
	}
	for _, status := range models.OrderStatuses {
		stats.OrdersByStatus[status] = 0
	}

	counts := make(map[string]*ProductOrderCount, len(products))
	for _, p := range products {
		if p.Active {
			stats.ActiveProducts++
		}
		counts[p.ID] = &ProductOrderCount{ProductID: p.ID, Name: p.Name}
	}

	for _, o := range orders {
		stats.OrdersByStatus[o.Status]++
		if o.Status != models.StatusCancelled {
			stats.Revenue += o.TotalAmount
		}
		for _, line := range o.Items {
			pc, ok := counts[line.Product.ID]
			if !ok {
				pc = &ProductOrderCount{ProductID: line.Product.ID, Name: line.Product.Label()}
				counts[line.Product.ID] = pc
			}
			pc.OrderCount += line.Quantity
		}
	}

	for _, pc := range counts {
		stats.ProductOrderCounts = append(stats.ProductOrderCounts, *pc)
	}
	slices.SortFunc(stats.ProductOrderCounts, func(a, b ProductOrderCount) int {
		if n := cmp.Compare(b.OrderCount, a.OrderCount); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return stats
}
