package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/export"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

func seedBrands(hs *harness, n int) {
	for i := 1; i <= n; i++ {
		hs.backend.Seed("brands", fmt.Sprintf(`{"_id":"b%d","name":"Brand %02d","tagline":"t","description":"d","image":"https://img/b.jpg","active":true}`, i, i))
	}
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/brands?q=Zen&sort=-name,updatedAt&page=3", nil)
	q := parseQuery(r)
	if q.Text != "Zen" || q.Page != 2 {
		t.Fatalf("unexpected query %+v", q)
	}
	if len(q.Sort) != 2 || q.Sort[0] != (listview.SortKey{Field: "name", Desc: true}) {
		t.Fatalf("unexpected sort %+v", q.Sort)
	}

	r = httptest.NewRequest(http.MethodGet, "/admin/brands?page=-4", nil)
	if q := parseQuery(r); q.Page != 0 {
		t.Fatalf("expected first page, got %d", q.Page)
	}
}

func TestQueryURL(t *testing.T) {
	if got := queryURL("/admin/brands", listview.Query{}); got != "/admin/brands" {
		t.Fatalf("unexpected url %q", got)
	}
	got := queryURL("/admin/brands", listview.Query{Text: "a b", Sort: []listview.SortKey{{Field: "name"}}, Page: 1})
	if got != "/admin/brands?page=2&q=a+b&sort=name" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestBrandListPaginatesAndSorts(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 7)
	hs.signInAs("admin")

	resp, body := hs.get("/admin/brands?sort=-name")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Brand 07") || strings.Contains(body, "Brand 01") {
		t.Fatalf("expected the first page sorted descending")
	}
	if !strings.Contains(body, "Page 1 of 2") || !strings.Contains(body, "page=2") {
		t.Fatalf("expected a link to the second page")
	}

	_, body = hs.get("/admin/brands?sort=-name&page=9")
	if !strings.Contains(body, "Page 2 of 2") || !strings.Contains(body, "Brand 01") {
		t.Fatalf("expected the page to be clamped to the last one")
	}
}

func TestBrandListSearch(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 3)
	hs.backend.Seed("brands", `{"_id":"zen","name":"Zen Wear","tagline":"calm","description":"d","active":false}`)
	hs.signInAs("admin")

	_, body := hs.get("/admin/brands?q=zen")
	if !strings.Contains(body, "Zen Wear") || strings.Contains(body, "Brand 01") {
		t.Fatalf("expected only the matching brand")
	}
	if !strings.Contains(body, "Activate") {
		t.Fatalf("expected an activate action for an inactive brand")
	}
}

func TestUnknownSortIsDropped(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 2)
	hs.signInAs("admin")

	resp, body := hs.get("/admin/brands?sort=bogus")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "showing unsorted results") {
		t.Fatalf("expected unknown sort notice")
	}
}

func TestListShowsFetchError(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")
	hs.backend.Fail("GET /customers", http.StatusInternalServerError)

	resp, body := hs.get("/admin/customers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Failed to load customers: injected failure") {
		t.Fatalf("expected the fetch error on the page")
	}
}

func TestCreateBrandUploadsImage(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")

	form := url.Values{"name": {"Acme"}, "tagline": {"Made well"}, "description": {"Workwear"}}
	resp, _ := hs.postMultipart(brandsPath, form, "imageFile", "logo.png")
	expectRedirect(t, resp, brandsPath)

	if hs.backend.Len("brands") != 1 {
		t.Fatalf("expected the brand to be created")
	}
	_, body := hs.follow(resp)
	if !strings.Contains(body, "Brand created successfully!") || !strings.Contains(body, "Acme") {
		t.Fatalf("expected the new brand in the refreshed list")
	}
	if len(hs.uploader.files) != 1 || hs.uploader.files[0] != "logo.png" {
		t.Fatalf("unexpected uploads %v", hs.uploader.files)
	}
}

func TestCreateBrandValidation(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")

	resp, body := hs.postMultipart(brandsPath, url.Values{"tagline": {"t"}}, "imageFile")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	for _, msg := range []string{"Brand name is required.", "Description is required.", "Image is required."} {
		if !strings.Contains(body, msg) {
			t.Fatalf("expected %q", msg)
		}
	}
	if hs.backend.Len("brands") != 0 || len(hs.uploader.files) != 0 {
		t.Fatalf("nothing should be sent for an invalid form")
	}
}

func TestCreateBrandUploadFailure(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")
	hs.uploader.err = errors.New("host down")

	form := url.Values{"name": {"Acme"}, "tagline": {"t"}, "description": {"d"}}
	resp, _ := hs.postMultipart(brandsPath, form, "imageFile", "logo.png")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if hs.backend.Len("brands") != 0 {
		t.Fatalf("brand must not be created without its image")
	}
}

func TestUpdateBrandKeepsImage(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 1)
	hs.signInAs("admin")

	_, body := hs.get(brandsPath + "/b1/edit")
	if !strings.Contains(body, "Brand 01") {
		t.Fatalf("expected the edit form to be filled")
	}

	resp, _ := hs.post(brandsPath+"/b1", url.Values{"name": {"Renamed"}, "tagline": {"t"}, "description": {"d"}})
	expectRedirect(t, resp, brandsPath)
	rec := hs.backend.Record("brands", "b1")
	if rec["name"] != "Renamed" || rec["image"] != "https://img/b.jpg" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestEditMissingBrandIsNotFound(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")
	resp, _ := hs.get(brandsPath + "/missing/edit")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestToggleBrand(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 1)
	hs.signInAs("admin")

	resp, _ := hs.post(brandsPath+"/b1/toggle", nil)
	expectRedirect(t, resp, brandsPath)
	if active := hs.backend.Record("brands", "b1")["active"]; active != false {
		t.Fatalf("expected brand to be deactivated, got %v", active)
	}
	if _, body := hs.follow(resp); !strings.Contains(body, "Brand status updated successfully.") {
		t.Fatalf("expected success flash")
	}
}

func TestDeleteFailureIsFlashed(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 1)
	hs.signInAs("admin")
	hs.backend.Fail("DELETE /brands/b1", http.StatusInternalServerError)

	resp, _ := hs.post(brandsPath+"/b1/delete", nil)
	expectRedirect(t, resp, brandsPath)
	_, body := hs.follow(resp)
	if !strings.Contains(body, "Failed to delete the record: injected failure") {
		t.Fatalf("expected failure flash")
	}
	if hs.backend.Len("brands") != 1 {
		t.Fatalf("brand must still exist")
	}
}

func TestDeleteCustomer(t *testing.T) {
	hs := newHarness(t)
	hs.backend.Seed("customers", `{"_id":"c1","firstName":"Ada","lastName":"Lovelace","email":"ada@avien.test"}`)
	hs.signInAs("admin")

	resp, _ := hs.post(customersPath+"/c1/delete", nil)
	expectRedirect(t, resp, customersPath)
	if hs.backend.Len("customers") != 0 {
		t.Fatalf("expected customer to be deleted")
	}
}

func TestCategoryNeedsBrand(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 2)
	hs.signInAs("admin")

	resp, body := hs.post(categoriesPath, url.Values{"name": {"Shirts"}, "description": {"d"}})
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Select at least one brand.") {
		t.Fatalf("expected brand selection error, got %d", resp.StatusCode)
	}

	resp, _ = hs.post(categoriesPath, url.Values{"name": {"Shirts"}, "description": {"d"}, "brands": {"b1", "b2"}})
	expectRedirect(t, resp, categoriesPath)
	_, body = hs.follow(resp)
	if !strings.Contains(body, "Brand 01, Brand 02") {
		t.Fatalf("expected brand names in the category list")
	}
}

func TestCreateProductUploadsImages(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 1)
	hs.signInAs("admin")

	form := url.Values{
		"name":        {"Tee"},
		"description": {"Cotton tee"},
		"details":     {"100% cotton"},
		"brand":       {"b1"},
		"sizes":       {"M", "S"},
		"price_S":     {"10"},
		"price_M":     {"12.5"},
		"discount":    {"5"},
	}
	resp, _ := hs.postMultipart(productsPath, form, "images", "front.png", "back.png")
	expectRedirect(t, resp, productsPath)

	_, body := hs.follow(resp)
	if !strings.Contains(body, "Tee") || !strings.Contains(body, "Brand 01") {
		t.Fatalf("expected product row with its brand name")
	}
	if len(hs.uploader.files) != 2 {
		t.Fatalf("expected two uploads, got %v", hs.uploader.files)
	}
}

func TestCreateProductNeedsImages(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 1)
	hs.signInAs("admin")

	form := url.Values{"name": {"Tee"}, "description": {"d"}, "details": {"d"}, "brand": {"b1"}, "sizes": {"S"}, "price_S": {"-1"}}
	resp, body := hs.postMultipart(productsPath, form, "images")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "At least one image is required.") || !strings.Contains(body, "Price cannot be negative.") {
		t.Fatalf("expected image and price errors")
	}
}

func TestReplaceProductImages(t *testing.T) {
	hs := newHarness(t)
	hs.backend.Seed("products", `{"_id":"p1","name":"Tee","brand":"b1","active":true,
		"images":[{"url":"https://img/a.jpg","public_id":"a"},{"url":"https://img/b.jpg","public_id":"b"}]}`)
	hs.signInAs("admin")

	resp, _ := hs.postMultipart(productsPath+"/p1/images", url.Values{"keep": {"b"}}, "images", "new.png")
	expectRedirect(t, resp, productsPath)

	images, _ := hs.backend.Record("products", "p1")["images"].([]any)
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %v", images)
	}
	first, _ := images[0].(map[string]any)
	second, _ := images[1].(map[string]any)
	if first["public_id"] != "b" || second["url"] != "https://img.test/new.png" {
		t.Fatalf("unexpected images %v", images)
	}
}

func TestReplaceProductImagesNeedsOne(t *testing.T) {
	hs := newHarness(t)
	hs.backend.Seed("products", `{"_id":"p1","name":"Tee","images":[{"url":"https://img/a.jpg","public_id":"a"}]}`)
	hs.signInAs("admin")

	resp, _ := hs.postMultipart(productsPath+"/p1/images", url.Values{}, "images")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCustomerForm(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")

	form := url.Values{
		"firstName":   {"Ada"},
		"lastName":    {"Lovelace"},
		"email":       {"ada@avien"},
		"password":    {"secret1"},
		"phoneNumber": {"+15550100"},
		"gender":      {"female"},
		"birthdate":   {"1990-12-10"},
	}
	resp, body := hs.post(customersPath, form)
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Invalid email format.") {
		t.Fatalf("expected email error, got %d", resp.StatusCode)
	}

	form.Set("email", "ada@avien.test")
	resp, _ = hs.post(customersPath, form)
	expectRedirect(t, resp, customersPath)
	if hs.backend.Len("customers") != 1 {
		t.Fatalf("expected the customer to be created")
	}
}

func TestOrderStatusUpdate(t *testing.T) {
	hs := newHarness(t)
	hs.backend.Seed("orders", `{"_id":"o1","orderStatus":"Pending","totalAmount":25,
		"customer":{"_id":"c1","firstName":"Ada","lastName":"Lovelace"},
		"items":[{"product":{"_id":"p1","name":"Tee"},"size":"M","price":25,"quantity":1}]}`)
	hs.signInAs("admin")

	_, body := hs.get(ordersPath + "/o1")
	if !strings.Contains(body, "Ada Lovelace") || !strings.Contains(body, "Tee") {
		t.Fatalf("expected order detail")
	}

	resp, body := hs.post(ordersPath+"/o1/status", url.Values{"orderStatus": {"Lost"}})
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Invalid status selected.") {
		t.Fatalf("expected status error, got %d", resp.StatusCode)
	}

	resp, _ = hs.post(ordersPath+"/o1/status", url.Values{"orderStatus": {"Shipped"}})
	expectRedirect(t, resp, ordersPath+"/o1")
	if got := hs.backend.Record("orders", "o1")["orderStatus"]; got != "Shipped" {
		t.Fatalf("expected Shipped, got %v", got)
	}
}

func TestExportUsesFilterAndSort(t *testing.T) {
	hs := newHarness(t)
	seedBrands(hs, 7)
	hs.signInAs("admin")

	resp, body := hs.get(brandsPath + "/export.xlsx?sort=-name")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	file, err := xlsx.OpenBinary([]byte(body))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	sheet, ok := file.Sheet["brands"]
	if !ok {
		t.Fatalf("expected a brands sheet")
	}
	if len(sheet.Rows) != 8 {
		t.Fatalf("expected header + every page, got %d rows", len(sheet.Rows))
	}
	if got := sheet.Rows[1].Cells[0].String(); got != "Brand 07" {
		t.Fatalf("expected sorted export, first row %q", got)
	}
}

func TestProductActionsEscapeID(t *testing.T) {
	h := &AdminHandler{Catalog: catalog.New(api.NewClient("http://backend.test", time.Second, nil)), PageSize: 5}
	actions := h.productTable().Actions(models.Product{ID: "a/b c"})
	if len(actions) != 4 {
		t.Fatalf("expected 4 actions, got %d", len(actions))
	}
	for _, a := range actions {
		if !strings.HasPrefix(a.URL, productsPath+"/a%2Fb%20c") {
			t.Fatalf("%s action has unescaped url %q", a.Name, a.URL)
		}
	}
}

func TestProductListNoticesBrandFailure(t *testing.T) {
	hs := newHarness(t)
	hs.backend.Seed("products", `{"_id":"p1","name":"Tee","brand":"b1","active":true}`)
	hs.signInAs("admin")
	hs.backend.Fail("GET /brands", http.StatusInternalServerError)

	for _, path := range []string{productsPath, categoriesPath} {
		resp, body := hs.get(path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if !strings.Contains(body, "Failed to load brands: injected failure. Brands are shown by id.") {
			t.Fatalf("%s: expected brands notice", path)
		}
	}
}
