// Package catalog keeps the dashboard's copy of every backend collection and
// routes each change through the backend first.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/entity"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

// Resource pairs the local store of one collection with its remote endpoint.
type Resource[T entity.Record] struct {
	*entity.Store[T]
	remote api.Collection[T]
}

func newResource[T entity.Record](name string, remote api.Collection[T]) *Resource[T] {
	return &Resource[T]{Store: entity.New[T](name), remote: remote}
}

func (r *Resource[T]) Refresh(ctx context.Context) error {
	return r.FetchAll(ctx, r.remote.List)
}

func (r *Resource[T]) Add(ctx context.Context, v T) (T, error) {
	return r.Create(ctx, func(ctx context.Context) (T, error) {
		return r.remote.Create(ctx, v)
	})
}

func (r *Resource[T]) Save(ctx context.Context, v T) (T, error) {
	return r.Update(ctx, func(ctx context.Context) (T, error) {
		return r.remote.Update(ctx, v.RecordID(), v)
	})
}

func (r *Resource[T]) Toggle(ctx context.Context, id string) (T, error) {
	return r.ToggleActive(ctx, func(ctx context.Context) (T, error) {
		return r.remote.ToggleActive(ctx, id)
	})
}

func (r *Resource[T]) Remove(ctx context.Context, id string) error {
	return r.Delete(ctx, id, func(ctx context.Context) error {
		return r.remote.Delete(ctx, id)
	})
}

// Lookup returns the local record, asking the backend when it is not held.
// A remote lookup does not change the store.
func (r *Resource[T]) Lookup(ctx context.Context, id string) (T, error) {
	if v, ok := r.Get(id); ok {
		return v, nil
	}
	v, err := r.remote.Get(ctx, id)
	if err != nil {
		return v, fmt.Errorf("lookup %s %s: %w", r.Name(), id, err)
	}
	return v, nil
}

type Catalog struct {
	client *api.Client

	Brands     *Resource[models.Brand]
	Categories *Resource[models.Category]
	Products   *Resource[models.Product]
	Customers  *Resource[models.Customer]
	Orders     *Resource[models.Order]
}

func New(client *api.Client) *Catalog {
	return &Catalog{
		client:     client,
		Brands:     newResource("brands", client.Brands()),
		Categories: newResource("categories", client.Categories()),
		Products:   newResource("products", client.Products()),
		Customers:  newResource("customers", client.Customers()),
		Orders:     newResource("orders", client.Orders()),
	}
}

// RefreshAll fetches every collection concurrently.
func (c *Catalog) RefreshAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Brands.Refresh(ctx) })
	g.Go(func() error { return c.Categories.Refresh(ctx) })
	g.Go(func() error { return c.Products.Refresh(ctx) })
	g.Go(func() error { return c.Customers.Refresh(ctx) })
	g.Go(func() error { return c.Orders.Refresh(ctx) })
	return g.Wait()
}

// ReplaceProductImages swaps the image list of a product.
func (c *Catalog) ReplaceProductImages(ctx context.Context, id string, images []models.Image) (models.Product, error) {
	return c.Products.Update(ctx, func(ctx context.Context) (models.Product, error) {
		return c.client.UpdateProductImages(ctx, id, images)
	})
}

// SetOrderStatus changes the status of an order. The backend answers without
// the populated customer, so the local snapshot is kept.
func (c *Catalog) SetOrderStatus(ctx context.Context, id, status string) (models.Order, error) {
	local, _ := c.Orders.Get(id)
	return c.Orders.Update(ctx, func(ctx context.Context) (models.Order, error) {
		o, err := c.client.UpdateOrderStatus(ctx, id, status)
		if err != nil {
			return o, err
		}
		if local.Customer != nil && (o.Customer == nil || o.Customer.FullName() == "") {
			o.Customer = local.Customer
		}
		return o, nil
	})
}

// Close makes every store ignore responses that are still on their way.
func (c *Catalog) Close() {
	c.Brands.Close()
	c.Categories.Close()
	c.Products.Close()
	c.Customers.Close()
	c.Orders.Close()
}
