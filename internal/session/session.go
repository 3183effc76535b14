// Package session holds the authenticated-user state for one storefront
// run as an explicit object with load/save over durable storage, rather
// than an ambient global.
package session

import (
	"encoding/json"
	"log"
	"strings"

	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/storage"
)

// StorageKey is the key the active user is persisted under.
const StorageKey = "zapateria_active_user"

type Session struct {
	kv     storage.KV
	logger *log.Logger
	user   *domain.User
}

// Load reads any persisted user from kv; a malformed value reads as
// signed out.
func Load(kv storage.KV, logger *log.Logger) *Session {
	s := &Session{kv: kv, logger: logger}
	raw, ok, err := kv.Get(StorageKey)
	if err != nil {
		s.logf("failed to read stored session: %v", err)
		return s
	}
	if !ok {
		return s
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logf("discarding malformed stored session: %v", err)
		return s
	}
	normalized := Normalize(user)
	s.user = &normalized
	return s
}

// User returns the active user, or nil when signed out.
func (s *Session) User() *domain.User {
	return s.user
}

// SignIn normalizes and persists the user as the active session.
func (s *Session) SignIn(user domain.User) {
	normalized := Normalize(user)
	s.user = &normalized
	data, err := json.Marshal(normalized)
	if err != nil {
		s.logf("failed to serialize session: %v", err)
		return
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		s.logf("failed to persist session: %v", err)
	}
}

// SignOut drops the active user and its persisted copy.
func (s *Session) SignOut() {
	s.user = nil
	if err := s.kv.Delete(StorageKey); err != nil {
		s.logf("failed to clear stored session: %v", err)
	}
}

// Normalize canonicalizes a user record: role aliases collapse to
// "admin" or "user", the email is lowercased, and name/surname fall back
// to firstName/lastName.
func Normalize(user domain.User) domain.User {
	user.Role = normalizeRole(user.Role)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Name == "" {
		user.Name = user.FirstName
	}
	if user.Surname == "" {
		user.Surname = user.LastName
	}
	return user
}

func normalizeRole(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrator", "administrador", "adm", "1", "true":
		return "admin"
	default:
		return "user"
	}
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
