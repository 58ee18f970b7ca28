package core

import (
	"crypto/rand"
	"fmt"
)

const (
	guidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	guidLength   = 8
	postPrefix   = "post-"
	displayShort = 4
)

// GenerateGUID creates a short GUID with the provided prefix.
func GenerateGUID(prefix string) (string, error) {
	normalized := prefix
	if len(normalized) > 0 && normalized[len(normalized)-1] == '-' {
		normalized = normalized[:len(normalized)-1]
	}

	buf := make([]byte, guidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}

	id := make([]byte, guidLength)
	for i := 0; i < guidLength; i++ {
		id[i] = guidAlphabet[int(buf[i])%len(guidAlphabet)]
	}

	return fmt.Sprintf("%s-%s", normalized, string(id)), nil
}

// ShortPostID returns the display prefix of a post id.
func ShortPostID(id string) string {
	base := id
	if len(base) >= len(postPrefix) && base[:len(postPrefix)] == postPrefix {
		base = base[len(postPrefix):]
	}
	if len(base) > displayShort {
		base = base[:displayShort]
	}
	return base
}
