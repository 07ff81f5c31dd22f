package export

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// HashAlgorithm identifies the hashing algorithm used for content hashes.
const HashAlgorithm = "SHA-256"

// ContentHash returns the hex SHA-256 of the concatenated parts. Each part is
// length-prefixed so ("ab","c") and ("a","bc") hash differently.
func ContentHash(parts ...[]byte) string {
	h := sha256.New()
	var prefix [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range prefix {
			prefix[i] = byte(n >> (8 * i))
		}
		h.Write(prefix[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ParamsHash hashes a parameter map with keys sorted for determinism.
func ParamsHash(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([][]byte, 0, 2*len(keys))
	for _, k := range keys {
		parts = append(parts, []byte(k), []byte(params[k]))
	}
	return ContentHash(parts...)
}

// ETag returns a strong entity tag built from the first 16 hex digits of hash.
func ETag(hash string) string {
	if len(hash) > 16 {
		hash = hash[:16]
	}
	return `"` + hash + `"`
}

// MatchesETag reports whether an If-None-Match header value lists tag.
func MatchesETag(ifNoneMatch, tag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}
