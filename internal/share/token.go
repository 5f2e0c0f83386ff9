// Package share issues the opaque tokens that gate public list views.
package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// TokenBytes is the amount of entropy in a token. Encoded as unpadded
// base64url it yields 32 characters.
const TokenBytes = 24

// NewToken returns a fresh URL-safe share token.
func NewToken() (string, error) {
	return newToken(rand.Reader)
}

func newToken(r io.Reader) (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
