package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api/apitest"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/catalog"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/web"
)

type fakeUploader struct {
	mu    sync.Mutex
	files []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, filename string, src io.Reader) (models.Image, error) {
	if _, err := io.ReadAll(src); err != nil {
		return models.Image{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Image{}, f.err
	}
	f.files = append(f.files, filename)
	return models.Image{URL: "https://img.test/" + filename, PublicID: "pid-" + filename}, nil
}

type harness struct {
	t        *testing.T
	backend  *apitest.Backend
	uploader *fakeUploader
	baseURL  string
	client   *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := apitest.New(t)
	client := api.NewClient(backend.URL, 5*time.Second, nil)

	templates := NewTemplateCache()
	if err := templates.Load(web.Templates()); err != nil {
		t.Fatalf("load templates: %v", err)
	}
	uploader := &fakeUploader{}
	h := &AdminHandler{
		Catalog:      catalog.New(client),
		API:          client,
		Uploader:     uploader,
		SessionStore: sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")),
		Templates:    templates,
		PageSize:     5,
	}
	srv := httptest.NewServer(h.Routes(nil, nil))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &harness{
		t:        t,
		backend:  backend,
		uploader: uploader,
		baseURL:  srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (hs *harness) do(req *http.Request) (*http.Response, string) {
	hs.t.Helper()
	resp, err := hs.client.Do(req)
	if err != nil {
		hs.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		hs.t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func (hs *harness) get(path string) (*http.Response, string) {
	hs.t.Helper()
	req, err := http.NewRequest(http.MethodGet, hs.baseURL+path, nil)
	if err != nil {
		hs.t.Fatalf("new request: %v", err)
	}
	return hs.do(req)
}

func (hs *harness) post(path string, form url.Values) (*http.Response, string) {
	hs.t.Helper()
	req, err := http.NewRequest(http.MethodPost, hs.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		hs.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return hs.do(req)
}

// postMultipart sends fields plus one file per filename under fileField.
func (hs *harness) postMultipart(path string, form url.Values, fileField string, filenames ...string) (*http.Response, string) {
	hs.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				hs.t.Fatalf("write field: %v", err)
			}
		}
	}
	for _, name := range filenames {
		fw, err := mw.CreateFormFile(fileField, name)
		if err != nil {
			hs.t.Fatalf("create file: %v", err)
		}
		_, _ = fw.Write([]byte("image bytes of " + name))
	}
	if err := mw.Close(); err != nil {
		hs.t.Fatalf("close multipart: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, hs.baseURL+path, &buf)
	if err != nil {
		hs.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return hs.do(req)
}

// follow loads the page a redirect points at.
func (hs *harness) follow(resp *http.Response) (*http.Response, string) {
	hs.t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		hs.t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	return hs.get(resp.Header.Get("Location"))
}

func (hs *harness) signInAs(role string) {
	hs.t.Helper()
	email := role + "@avien.test"
	hs.backend.AddAccount(email, "password123", role)
	resp, _ := hs.post(signInPath, url.Values{"email": {email}, "password": {"password123"}})
	if role == "admin" && (resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin") {
		hs.t.Fatalf("expected redirect to /admin, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != to {
		t.Fatalf("expected redirect to %q, got %q", to, loc)
	}
}

func TestAdminRequiresSignIn(t *testing.T) {
	hs := newHarness(t)
	resp, _ := hs.get("/admin/brands")
	expectRedirect(t, resp, signInPath)

	_, body := hs.follow(resp)
	if !strings.Contains(body, "You must be signed in to access this page.") {
		t.Fatalf("expected sign-in notice, got %s", body)
	}
}

func TestAdminSignInReachesDashboard(t *testing.T) {
	hs := newHarness(t)
	hs.backend.Seed("orders", `{"_id":"o1","orderStatus":"Delivered","totalAmount":40}`)
	hs.signInAs("admin")

	resp, body := hs.get("/admin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Login successful. Welcome, admin!") {
		t.Fatalf("expected welcome flash")
	}
	if !strings.Contains(body, "$40.00") {
		t.Fatalf("expected revenue on dashboard")
	}

	// flashes are shown once
	_, body = hs.get("/admin")
	if strings.Contains(body, "Login successful") {
		t.Fatalf("flash shown twice")
	}
}

func TestSignInPageRedirectsAdmins(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")
	resp, _ := hs.get(signInPath)
	expectRedirect(t, resp, "/admin")
}

func TestNonAdminIsDenied(t *testing.T) {
	hs := newHarness(t)
	hs.backend.AddAccount("shopper@avien.test", "password123", "customer")
	resp, body := hs.post(signInPath, url.Values{"email": {"shopper@avien.test"}, "password": {"password123"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, notAuthorizedMessage) {
		t.Fatalf("expected not authorized message")
	}

	resp, _ = hs.get("/admin")
	expectRedirect(t, resp, signInPath)
	_, body = hs.follow(resp)
	if !strings.Contains(body, notAuthorizedMessage) {
		t.Fatalf("expected not authorized flash on redirect")
	}
}

func TestSignInValidation(t *testing.T) {
	hs := newHarness(t)
	resp, body := hs.post(signInPath, url.Values{"email": {"not-an-email"}, "password": {"short"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	for _, msg := range []string{"Invalid email format.", "Password must be at least 8 characters."} {
		if !strings.Contains(body, msg) {
			t.Fatalf("expected %q in body", msg)
		}
	}
}

func TestSignInWrongPassword(t *testing.T) {
	hs := newHarness(t)
	hs.backend.AddAccount("admin@avien.test", "password123", "admin")
	resp, body := hs.post(signInPath, url.Values{"email": {"admin@avien.test"}, "password": {"wrong-password"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Login failed: Invalid email or password") {
		t.Fatalf("expected backend message in flash")
	}
}

func TestSignUpCreatesAdminAndSwitchesSession(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")

	resp, body := hs.post("/auth/sign-up", url.Values{
		"username":        {"second"},
		"email":           {"second@avien.test"},
		"password":        {"password456"},
		"confirmPassword": {"password123"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, "Passwords must match.") {
		t.Fatalf("expected mismatch error, got %d", resp.StatusCode)
	}

	resp, _ = hs.post("/auth/sign-up", url.Values{
		"username":        {"second"},
		"email":           {"second@avien.test"},
		"password":        {"password456"},
		"confirmPassword": {"password456"},
	})
	expectRedirect(t, resp, "/admin")
	if _, body := hs.follow(resp); !strings.Contains(body, "Account created successfully!") {
		t.Fatalf("expected success flash")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")
	resp, _ := hs.post("/auth/logout", nil)
	expectRedirect(t, resp, signInPath)

	resp, _ = hs.get("/admin")
	expectRedirect(t, resp, signInPath)
}

func TestRejectedTokenEndsSession(t *testing.T) {
	hs := newHarness(t)
	hs.signInAs("admin")
	hs.backend.Fail("GET /brands", http.StatusUnauthorized)

	resp, _ := hs.get("/admin/brands")
	expectRedirect(t, resp, signInPath)
	if _, body := hs.follow(resp); !strings.Contains(body, "Your session has expired. Please sign in again.") {
		t.Fatalf("expected expiry flash")
	}

	resp, _ = hs.get("/admin")
	expectRedirect(t, resp, signInPath)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	hs := newHarness(t)
	resp, body := hs.get("/no/such/page")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Page not found") {
		t.Fatalf("expected not found page")
	}
}

func TestHealth(t *testing.T) {
	hs := newHarness(t)
	resp, body := hs.get("/health")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, body)
	}
}
