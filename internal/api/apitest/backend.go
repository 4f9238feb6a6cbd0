// Package apitest serves an in-memory imitation of the catalog backend for
// tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type record = map[string]any

type account struct {
	password string
	role     string
	user     record
}

// Backend holds the collections in insertion order.
type Backend struct {
	URL string

	mu          sync.Mutex
	collections map[string][]record
	accounts    map[string]account
	failures    map[string]int
	seq         int
	requireAuth bool
}

var toggleable = map[string]bool{"brands": true, "categories": true, "products": true}

// New starts a backend under <server>/api that lives as long as the test.
func New(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		collections: map[string][]record{
			"brands": {}, "categories": {}, "products": {}, "customers": {}, "orders": {},
		},
		accounts: map[string]account{},
		failures: map[string]int{},
	}
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	b.URL = srv.URL + "/api"
	return b
}

// Token signs a token carrying role with a key the dashboard never sees.
func Token(role string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-" + role, "role": role})
	signed, err := tok.SignedString([]byte("backend-only-secret"))
	if err != nil {
		panic(err)
	}
	return signed
}

// RequireAuth makes every collection request without a bearer token fail with 401.
func (b *Backend) RequireAuth() {
	b.mu.Lock()
	b.requireAuth = true
	b.mu.Unlock()
}

// AddAccount registers a login.
func (b *Backend) AddAccount(email, password, role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[email] = account{
		password: password,
		role:     role,
		user:     record{"_id": "u-" + email, "username": strings.Split(email, "@")[0], "email": email, "role": role},
	}
}

// Fail makes requests matching "METHOD /path" answer with status.
func (b *Backend) Fail(methodPath string, status int) {
	b.mu.Lock()
	b.failures[methodPath] = status
	b.mu.Unlock()
}

// Seed appends raw JSON records to a collection, assigning ids where missing.
func (b *Backend) Seed(collection string, records ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, raw := range records {
		var r record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			panic(fmt.Sprintf("apitest: bad seed %q: %v", raw, err))
		}
		if _, ok := r["_id"]; !ok {
			r["_id"] = b.nextID(collection)
		}
		b.collections[collection] = append(b.collections[collection], r)
	}
}

// Len is the number of records the backend holds in collection.
func (b *Backend) Len(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.collections[collection])
}

// Record returns a copy of one record, nil when absent.
func (b *Backend) Record(collection, id string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(collection, id); i >= 0 {
		out := record{}
		for k, v := range b.collections[collection][i] {
			out[k] = v
		}
		return out
	}
	return nil
}

func (b *Backend) nextID(collection string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", collection, b.seq)
}

func (b *Backend) index(collection, id string) int {
	for i, r := range b.collections[collection] {
		if r["_id"] == id {
			return i
		}
	}
	return -1
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.injectFailures)
	r.Route("/api", func(r chi.Router) {
		r.Post("/user/login", b.login)
		r.Post("/user/signup", b.signup)
		r.Route("/{collection}", func(r chi.Router) {
			r.Use(b.knownCollection)
			r.Get("/", b.list)
			r.Post("/", b.create)
			r.Get("/{id}", b.get)
			r.Put("/{id}", b.update)
			r.Delete("/{id}", b.remove)
			r.Put("/{id}/toggleActive", b.toggle)
			r.Put("/{id}/images", b.images)
		})
	})
	return r
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status, fail := b.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		b.mu.Unlock()
		if fail {
			writeJSON(w, status, record{"message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) knownCollection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		_, ok := b.collections[chi.URLParam(r, "collection")]
		needAuth := b.requireAuth
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, record{"message": "no such collection"})
			return
		}
		if needAuth && !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, record{"message": "missing token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.collections[chi.URLParam(r, "collection")])
}

func (b *Backend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	i := b.index(c, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, record{"message": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, b.collections[c][i])
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request) {
	var in record
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, record{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c := chi.URLParam(r, "collection")
	in["_id"] = b.nextID(c)
	delete(in, "password")
	if toggleable[c] {
		in["active"] = true
	}
	b.collections[c] = append(b.collections[c], in)
	writeJSON(w, http.StatusCreated, in)
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request) {
	var in record
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, record{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	i := b.index(c, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, record{"message": "not found"})
		return
	}
	current := b.collections[c][i]
	for k, v := range in {
		if k == "_id" || k == "active" || k == "password" {
			continue
		}
		current[k] = v
	}
	writeJSON(w, http.StatusOK, current)
}

func (b *Backend) toggle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	i := b.index(c, id)
	if !toggleable[c] || i < 0 {
		writeJSON(w, http.StatusNotFound, record{"message": "not found"})
		return
	}
	current := b.collections[c][i]
	active, _ := current["active"].(bool)
	current["active"] = !active
	writeJSON(w, http.StatusOK, current)
}

func (b *Backend) images(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Images []any `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, record{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	i := b.index(c, id)
	if c != "products" || i < 0 {
		writeJSON(w, http.StatusNotFound, record{"message": "not found"})
		return
	}
	b.collections[c][i]["images"] = in.Images
	writeJSON(w, http.StatusOK, b.collections[c][i])
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	i := b.index(c, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, record{"message": "not found"})
		return
	}
	b.collections[c] = append(b.collections[c][:i], b.collections[c][i+1:]...)
	writeJSON(w, http.StatusOK, record{"message": "deleted"})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	acct, ok := b.accounts[in.Email]
	b.mu.Unlock()
	if !ok || acct.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, record{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, record{"token": Token(acct.role), "user": acct.user})
}

// signup creates admin accounts; only admins can reach the form.
func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[in.Email]; exists {
		writeJSON(w, http.StatusConflict, record{"message": "User already exists"})
		return
	}
	user := record{"_id": "u-" + in.Email, "username": in.Username, "email": in.Email, "role": "admin"}
	b.accounts[in.Email] = account{password: in.Password, role: "admin", user: user}
	writeJSON(w, http.StatusCreated, record{"token": Token("admin"), "user": user})
}
