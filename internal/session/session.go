// Package session derives who is signed in from a bearer token kept in
// client-side storage.
package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

// Keys of the persisted client state.
const (
	TokenKey = "token"
	RoleKey  = "role"
)

const AdminRole = "admin"

var ErrInvalidToken = errors.New("session: token cannot be decoded")

type State int

const (
	Unauthenticated State = iota
	AuthenticatedNonAdmin
	AuthenticatedAdmin
)

func (s State) String() string {
	switch s {
	case AuthenticatedAdmin:
		return "authenticated-admin"
	case AuthenticatedNonAdmin:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Storage is the persisted client state: string values under string keys.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Claims is the part of the backend token the dashboard reads.
type Claims struct {
	UserID string `json:"id,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeRole reads the role claim without verifying the signature. The
// dashboard holds no signing key; the backend rejects forged or expired
// tokens on the next request.
func DecodeRole(token string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.Role, nil
}

// Session is the signed-in state for one client. It is created from storage
// with Init and writes through to the same storage on every change.
type Session struct {
	storage Storage
	token   string
	role    string
	user    *models.User
}

// Init derives the session from storage. An undecodable token is purged
// together with the stored role. The stored role is never trusted; it is
// always re-derived from the token.
func Init(storage Storage) (*Session, error) {
	s := &Session{storage: storage}
	token, ok, err := storage.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	if !ok || token == "" {
		return s, nil
	}
	role, err := DecodeRole(token)
	if err != nil {
		if err := s.clear(); err != nil {
			return nil, err
		}
		return s, nil
	}
	s.token = token
	s.role = role
	return s, nil
}

// Establish records a successful login or signup. A token that cannot be
// decoded leaves the session unauthenticated and is not persisted.
func (s *Session) Establish(resp models.AuthResponse) error {
	role, err := DecodeRole(resp.Token)
	if err != nil {
		if cerr := s.clear(); cerr != nil {
			return cerr
		}
		return err
	}
	if err := s.storage.Set(TokenKey, resp.Token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	if err := s.storage.Set(RoleKey, role); err != nil {
		return fmt.Errorf("persist session role: %w", err)
	}
	s.token = resp.Token
	s.role = role
	user := resp.User
	s.user = &user
	return nil
}

// Logout clears the token and the role together.
func (s *Session) Logout() error {
	return s.clear()
}

func (s *Session) clear() error {
	s.token, s.role, s.user = "", "", nil
	if err := s.storage.Delete(TokenKey); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	if err := s.storage.Delete(RoleKey); err != nil {
		return fmt.Errorf("clear session role: %w", err)
	}
	return nil
}

func (s *Session) State() State {
	switch {
	case s.token == "":
		return Unauthenticated
	case s.role == AdminRole:
		return AuthenticatedAdmin
	default:
		return AuthenticatedNonAdmin
	}
}

func (s *Session) IsAdmin() bool { return s.State() == AuthenticatedAdmin }
func (s *Session) Token() string { return s.token }
func (s *Session) Role() string  { return s.role }

// User is only known right after login or signup in this process.
func (s *Session) User() *models.User { return s.user }
