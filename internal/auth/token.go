// Package auth manages the optional bearer token attached to API requests.
package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/billmal071/cosmere/internal/db"
)

// TokenKey is the local storage key holding the bearer token.
const TokenKey = "auth_token"

// Store reads and clears the persisted token.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// LocalStore keeps the token in the sqlite local storage table.
type LocalStore struct{}

// NewLocalStore returns a Store backed by db local storage.
func NewLocalStore() *LocalStore { return &LocalStore{} }

func (LocalStore) Token() (string, error) {
	v, ok, err := db.GetItem(TokenKey)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

func (LocalStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	return db.SetItem(TokenKey, token)
}

func (LocalStore) ClearToken() error {
	return db.RemoveItem(TokenKey)
}

// MemoryStore is an in-process Store, used by tests and one-off commands.
type MemoryStore struct {
	mu      sync.Mutex
	token   string
	cleared int
}

// NewMemoryStore returns a MemoryStore seeded with token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

// Cleared reports how many times ClearToken was called.
func (m *MemoryStore) Cleared() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// Info describes a token as far as the client can tell without the signing key.
type Info struct {
	JWT       bool
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect parses token without verifying its signature. Opaque tokens are
// reported with JWT=false; the server stays the authority on validity.
func Inspect(token string) Info {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return Info{}
	}
	info := Info{JWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}
