package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/api"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/forms"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/session"
)

const (
	sessionName = "admin-session"
	signInPath  = "/auth/sign-in"

	notAuthorizedMessage = "You are not authorized to access the admin panel."
)

type sessionKey struct{}

// cookieStorage keeps the client state in the signed session cookie.
type cookieStorage struct {
	s *sessions.Session
}

func (c cookieStorage) Get(key string) (string, bool, error) {
	v, ok := c.s.Values[key].(string)
	return v, ok, nil
}

func (c cookieStorage) Set(key, value string) error {
	c.s.Values[key] = value
	return nil
}

func (c cookieStorage) Delete(key string) error {
	delete(c.s.Values, key)
	return nil
}

// loadSession derives the session of the request from its cookie.
func (h *AdminHandler) loadSession(r *http.Request) (*sessions.Session, *session.Session, error) {
	cookie, _ := h.SessionStore.Get(r, sessionName)
	sess, err := session.Init(cookieStorage{s: cookie})
	return cookie, sess, err
}

// RequireAdmin lets only admin sessions through. Downstream handlers find the
// session in the request context and their backend calls carry its token.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, sess, err := h.loadSession(r)
		if err != nil {
			slog.Error("Failed to read session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		switch sess.State() {
		case session.AuthenticatedAdmin:
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			ctx = api.WithToken(ctx, sess.Token())
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		case session.AuthenticatedNonAdmin:
			slog.Info("RequireAdmin: non-admin session rejected", "path", r.URL.Path, "role", sess.Role())
			cookie.AddFlash(FlashMessage{Type: "error", Message: notAuthorizedMessage})
		default:
			slog.Info("RequireAdmin: not signed in, redirecting", "path", r.URL.Path)
			cookie.AddFlash(FlashMessage{Type: "error", Message: "You must be signed in to access this page."})
		}
		// also persists a purged token
		if err := cookie.Save(r, w); err != nil {
			slog.Error("Failed to save session", "error", err)
		}
		http.Redirect(w, r, signInPath, http.StatusSeeOther)
	})
}

func (h *AdminHandler) endSession(w http.ResponseWriter, r *http.Request) {
	cookie, sess, err := h.loadSession(r)
	if err == nil {
		err = sess.Logout()
	}
	if err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	if err := cookie.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

func (h *AdminHandler) SignInGet(w http.ResponseWriter, r *http.Request) {
	cookie, sess, err := h.loadSession(r)
	if err == nil && sess.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	// persist a purged token before rendering
	_ = cookie.Save(r, w)
	h.render(w, r, http.StatusOK, "sign_in.html", map[string]any{"Values": map[string]string{}})
}

func (h *AdminHandler) SignInPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	login, errs := forms.SignIn(r.PostForm)
	data := map[string]any{"Values": map[string]string{"email": login.Email}}
	if !errs.Valid() {
		h.invalid(w, r, "sign_in.html", errs, data)
		return
	}

	resp, err := h.API.Login(r.Context(), api.Credentials{Email: login.Email, Password: login.Password})
	if err != nil {
		slog.Warn("Login failed", "email", login.Email, "error", err)
		h.flash(w, r, "error", loginFailure(err))
		h.render(w, r, http.StatusUnauthorized, "sign_in.html", data)
		return
	}

	cookie, sess, err := h.loadSession(r)
	if err == nil {
		err = sess.Establish(resp)
	}
	if err != nil {
		slog.Error("Failed to establish session", "error", err)
		_ = cookie.Save(r, w)
		h.flash(w, r, "error", "Login failed: the server returned an unreadable token.")
		h.render(w, r, http.StatusBadGateway, "sign_in.html", data)
		return
	}

	if !sess.IsAdmin() {
		cookie.AddFlash(FlashMessage{Type: "error", Message: notAuthorizedMessage})
		if err := cookie.Save(r, w); err != nil {
			slog.Error("Failed to save session", "error", err)
		}
		h.render(w, r, http.StatusForbidden, "sign_in.html", data)
		return
	}

	cookie.AddFlash(FlashMessage{Type: "success", Message: "Login successful. Welcome, " + resp.User.Username + "!"})
	if err := cookie.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	slog.Info("Login successful, redirecting to /admin", "user_id", resp.User.ID)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func loginFailure(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return "Login failed: " + apiErr.Message
	}
	return "Login failed. The server could not be reached."
}

func (h *AdminHandler) SignUpGet(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "sign_up.html", map[string]any{"Values": map[string]string{}})
}

// SignUpPost registers a new account and continues as that account.
func (h *AdminHandler) SignUpPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	signup, errs := forms.SignUp(r.PostForm)
	data := map[string]any{"Values": map[string]string{"username": signup.Username, "email": signup.Email}}
	if !errs.Valid() {
		h.invalid(w, r, "sign_up.html", errs, data)
		return
	}

	resp, err := h.API.Signup(r.Context(), api.Registration{
		Username: signup.Username,
		Email:    signup.Email,
		Password: signup.Password,
	})
	if err != nil {
		if h.failure(w, r, "sign up", err) {
			http.Redirect(w, r, signInPath, http.StatusSeeOther)
			return
		}
		h.render(w, r, http.StatusBadGateway, "sign_up.html", data)
		return
	}

	cookie, sess, err := h.loadSession(r)
	if err == nil {
		err = sess.Establish(resp)
	}
	if err := cookie.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	if err != nil {
		h.redirect(w, r, "error", "Signup succeeded but the returned token is unreadable. Please sign in.", signInPath)
		return
	}
	h.redirect(w, r, "success", "Account created successfully!", "/admin")
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	h.redirect(w, r, "success", "Logged out successfully!", signInPath)
}
