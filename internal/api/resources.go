package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

// Collection is one REST resource of the backend.
type Collection[T any] struct {
	client *Client
	path   string
}

func (c Collection[T]) item(id string, suffix ...string) string {
	p := c.path + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func (c Collection[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.client.do(ctx, http.MethodGet, c.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := c.client.do(ctx, http.MethodGet, c.item(id), nil, &out)
	return out, err
}

func (c Collection[T]) Create(ctx context.Context, v T) (T, error) {
	var out T
	err := c.client.do(ctx, http.MethodPost, c.path, v, &out)
	return out, err
}

func (c Collection[T]) Update(ctx context.Context, id string, v T) (T, error) {
	var out T
	err := c.client.do(ctx, http.MethodPut, c.item(id), v, &out)
	return out, err
}

// ToggleActive flips the active flag on the server and returns the record.
func (c Collection[T]) ToggleActive(ctx context.Context, id string) (T, error) {
	var out T
	err := c.client.do(ctx, http.MethodPut, c.item(id, "toggleActive"), nil, &out)
	return out, err
}

func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return c.client.do(ctx, http.MethodDelete, c.item(id), nil, nil)
}

func (c *Client) Brands() Collection[models.Brand] {
	return Collection[models.Brand]{client: c, path: "/brands"}
}

func (c *Client) Categories() Collection[models.Category] {
	return Collection[models.Category]{client: c, path: "/categories"}
}

func (c *Client) Products() Collection[models.Product] {
	return Collection[models.Product]{client: c, path: "/products"}
}

func (c *Client) Customers() Collection[models.Customer] {
	return Collection[models.Customer]{client: c, path: "/customers"}
}

func (c *Client) Orders() Collection[models.Order] {
	return Collection[models.Order]{client: c, path: "/orders"}
}

// UpdateProductImages replaces the image list of a product.
func (c *Client) UpdateProductImages(ctx context.Context, id string, images []models.Image) (models.Product, error) {
	var out models.Product
	body := map[string][]models.Image{"images": images}
	err := c.do(ctx, http.MethodPut, c.Products().item(id, "images"), body, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (models.Order, error) {
	var out models.Order
	body := map[string]string{"orderStatus": status}
	err := c.do(ctx, http.MethodPut, c.Orders().item(id), body, &out)
	return out, err
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/user/login", creds, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, reg Registration) (models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/user/signup", reg, &out)
	return out, err
}
