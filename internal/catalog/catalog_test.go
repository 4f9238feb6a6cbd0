package catalog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api/apitest"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

func newCatalog(t *testing.T) (*Catalog, *apitest.Backend) {
	t.Helper()
	backend := apitest.New(t)
	return New(api.NewClient(backend.URL, 5*time.Second, nil)), backend
}

func TestRefreshAllLoadsEveryCollection(t *testing.T) {
	c, backend := newCatalog(t)
	backend.Seed("brands", `{"name":"Acme","active":true}`, `{"name":"Zen"}`)
	backend.Seed("categories", `{"name":"Shirts","brands":["brands-1"]}`)
	backend.Seed("orders", `{"orderStatus":"Pending","totalAmount":10}`)

	if err := c.RefreshAll(context.Background()); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if n := len(c.Brands.Items()); n != 2 {
		t.Fatalf("expected 2 brands, got %d", n)
	}
	if got := c.Categories.Items()[0].Brands; len(got) != 1 || got[0].ID != "brands-1" {
		t.Fatalf("unexpected category brands %+v", got)
	}
	if c.Brands.Snapshot().Loading {
		t.Fatalf("loading should end after refresh")
	}
}

func TestRefreshFailureIsRecorded(t *testing.T) {
	c, backend := newCatalog(t)
	backend.Fail("GET /products", http.StatusInternalServerError)
	err := c.RefreshAll(context.Background())
	if !api.IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("expected 500, got %v", err)
	}
	if snap := c.Products.Snapshot(); snap.Err == nil {
		t.Fatalf("expected products store to hold the error")
	}
}

func TestMutationsFollowServer(t *testing.T) {
	c, backend := newCatalog(t)
	ctx := context.Background()

	brand, err := c.Brands.Add(ctx, models.Brand{Name: "Acme", Tagline: "t", Description: "d", Image: "https://img/a.jpg"})
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if brand.ID == "" || !brand.Active {
		t.Fatalf("expected server id and default active, got %+v", brand)
	}

	brand.Name = "Acme Co"
	if _, err := c.Brands.Save(ctx, brand); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if got, _ := c.Brands.Get(brand.ID); got.Name != "Acme Co" {
		t.Fatalf("expected local copy updated, got %+v", got)
	}

	if _, err := c.Brands.Toggle(ctx, brand.ID); err != nil {
		t.Fatalf("toggle error: %v", err)
	}
	if got, _ := c.Brands.Get(brand.ID); got.Active {
		t.Fatalf("expected inactive after toggle")
	}

	if err := c.Brands.Remove(ctx, brand.ID); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	if len(c.Brands.Items()) != 0 || backend.Len("brands") != 0 {
		t.Fatalf("expected brand gone locally and remotely")
	}
}

func TestFailedDeleteKeepsRecord(t *testing.T) {
	c, backend := newCatalog(t)
	backend.Seed("customers", `{"_id":"c1","firstName":"Ada"}`)
	ctx := context.Background()
	if err := c.Customers.Refresh(ctx); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	backend.Fail("DELETE /customers/c1", http.StatusForbidden)
	if err := c.Customers.Remove(ctx, "c1"); !api.IsStatus(err, http.StatusForbidden) {
		t.Fatalf("expected 403, got %v", err)
	}
	if _, ok := c.Customers.Get("c1"); !ok {
		t.Fatalf("record must survive a rejected delete")
	}
}

func TestLookupFallsBackToBackend(t *testing.T) {
	c, backend := newCatalog(t)
	backend.Seed("customers", `{"_id":"c9","firstName":"Grace","lastName":"Hopper"}`)
	got, err := c.Customers.Lookup(context.Background(), "c9")
	if err != nil || got.FullName() != "Grace Hopper" {
		t.Fatalf("unexpected lookup %+v %v", got, err)
	}
	if len(c.Customers.Items()) != 0 {
		t.Fatalf("remote lookup must not change the store")
	}
	if _, err := c.Customers.Lookup(context.Background(), "missing"); !api.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestOrderStatusAndProductImages(t *testing.T) {
	c, backend := newCatalog(t)
	backend.Seed("orders", `{"_id":"o1","orderStatus":"Pending"}`)
	backend.Seed("products", `{"_id":"p1","name":"Tee","images":[]}`)
	ctx := context.Background()
	if err := c.RefreshAll(ctx); err != nil {
		t.Fatalf("refresh error: %v", err)
	}

	if _, err := c.SetOrderStatus(ctx, "o1", models.StatusDelivered); err != nil {
		t.Fatalf("status error: %v", err)
	}
	if got, _ := c.Orders.Get("o1"); got.Status != models.StatusDelivered {
		t.Fatalf("expected Delivered, got %q", got.Status)
	}

	images := []models.Image{{URL: "https://img/1.jpg", PublicID: "1"}}
	if _, err := c.ReplaceProductImages(ctx, "p1", images); err != nil {
		t.Fatalf("images error: %v", err)
	}
	if got, _ := c.Products.Get("p1"); len(got.Images) != 1 || got.Images[0].PublicID != "1" {
		t.Fatalf("unexpected images %+v", got.Images)
	}
}

func TestOrderStatusKeepsCustomerWhenUnpopulated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"o1","orderStatus":"Pending","customer":{"_id":"c1","firstName":"Ada","lastName":"Lovelace"}}]`)
	})
	mux.HandleFunc("PUT /orders/o1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"_id":"o1","orderStatus":"Shipped","customer":"c1"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(api.NewClient(srv.URL, 5*time.Second, nil))
	ctx := context.Background()
	if err := c.Orders.Refresh(ctx); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if _, err := c.SetOrderStatus(ctx, "o1", models.StatusShipped); err != nil {
		t.Fatalf("status error: %v", err)
	}
	got, _ := c.Orders.Get("o1")
	if got.Status != models.StatusShipped {
		t.Fatalf("expected Shipped, got %q", got.Status)
	}
	if got.Customer == nil || got.Customer.FullName() != "Ada Lovelace" {
		t.Fatalf("expected local customer kept, got %+v", got.Customer)
	}
}
