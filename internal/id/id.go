package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random identifier for an account, transaction or project.
func New() string {
	return uuid.NewString()
}

// Parse validates and normalizes an identifier.
// "6F9619FF-8B86-D011-B42D-00C04FC964FF" -> "6f9619ff-8b86-d011-b42d-00c04fc964ff"
func Parse(s string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return u.String(), nil
}

// Short returns the first block of an identifier for compact listings.
func Short(s string) string {
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}
