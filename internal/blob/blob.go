// Package blob stores uploaded files (purchase invoices and photos) on disk
// under opaque keys and mints short-lived signed tokens for downloading them
// without an authenticated session.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultURLTTL is how long a signed download token stays valid.
const DefaultURLTTL = time.Hour

// Store writes and reads files under a root directory. Keys have the shape
// <kind>/<uuid><ext> and never contain caller-controlled path segments.
type Store struct {
	root   string
	secret string
}

// New returns a store rooted at dir, creating it if needed. The secret signs
// download tokens.
func New(dir, secret string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Store{root: dir, secret: secret}, nil
}

// Save writes data under a fresh key in the given kind subdirectory and
// returns the key. ext must include the leading dot.
func (s *Store) Save(kind, ext string, data []byte) (string, error) {
	if err := validSegment(kind); err != nil {
		return "", err
	}
	if ext != "" && (!strings.HasPrefix(ext, ".") || strings.ContainsAny(ext[1:], "./\\")) {
		return "", fmt.Errorf("invalid extension %q", ext)
	}

	key := kind + "/" + uuid.NewString() + ext
	path := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating %s directory: %w", kind, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return key, nil
}

// Open returns the stored file and its content type.
func (s *Store) Open(key string) (*os.File, string, error) {
	if err := validKey(key); err != nil {
		return nil, "", err
	}

	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, "", fmt.Errorf("opening file: %w", err)
	}
	return f, ContentType(key), nil
}

// Delete removes a stored file. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// SignURL mints a download token for key, valid for ttl (DefaultURLTTL when
// zero), and returns the download path embedding it.
func (s *Store) SignURL(key string, ttl time.Duration) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}

	claims := jwt.RegisteredClaims{
		Subject:   key,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("signing download token: %w", err)
	}
	return "/api/files/" + token, nil
}

// Verify checks a download token and returns the key it grants access to.
func (s *Store) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing download token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid download token")
	}
	return claims.Subject, nil
}

// ContentType maps a key's extension to a MIME type for download responses.
func ContentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

func validKey(key string) error {
	parts := strings.Split(key, "/")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key %q", key)
	}
	for _, p := range parts {
		if err := validSegment(p); err != nil {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}

func validSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/\\") {
		return fmt.Errorf("invalid path segment %q", s)
	}
	return nil
}
