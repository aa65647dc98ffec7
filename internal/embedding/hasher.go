// ABOUTME: Derived text and content fingerprints for embedding cache keys
// ABOUTME: Both must be reproduced identically on write and on lookup
package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/harper/semantic-canvas/internal/models"
)

// DerivedText builds the embedding input for a block: content, language,
// tags and type in that order, empty fields skipped, joined by single spaces.
func DerivedText(b *models.Block) string {
	parts := make([]string, 0, len(b.Tags)+3)
	parts = appendNonEmpty(parts, b.Content)
	parts = appendNonEmpty(parts, b.Language)
	for _, tag := range b.Tags {
		parts = appendNonEmpty(parts, tag)
	}
	parts = appendNonEmpty(parts, string(b.Type))
	return strings.TrimSpace(strings.Join(parts, " "))
}

func appendNonEmpty(parts []string, s string) []string {
	if s == "" {
		return parts
	}
	return append(parts, s)
}

// Fingerprint returns the hex SHA-256 of text. It is a cache key only and
// must never stand in for a block identity.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// shortFingerprint is the log-friendly prefix of a fingerprint
func shortFingerprint(fp string) string {
	if len(fp) < 8 {
		return fp
	}
	return fp[:8]
}
