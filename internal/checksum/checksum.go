// Package checksum fingerprints section sources. The digest doubles as the
// HTTP entity tag of a section.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// String returns Sum of s.
func String(s string) string {
	return Sum([]byte(s))
}

// ETag quotes a digest for the ETag header.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// Matches reports whether an If-None-Match header value names sum. The
// header may list several tags, use weak tags or be "*".
func Matches(header, sum string) bool {
	for tag := range strings.SplitSeq(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		if strings.Trim(strings.TrimPrefix(tag, "W/"), `"`) == sum {
			return true
		}
	}
	return false
}
