package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives 256 bits of entropy per opaque token, well past the
// unguessability floor for verification and reset links.
const tokenBytes = 32

// GenerateToken returns an opaque, URL-safe random string. The same
// generator serves verification and reset tokens; which column stores the
// value is what distinguishes the kind.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
