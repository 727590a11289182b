// Package hash maps counter codes onto NATS KV keys.
package hash

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// hashedPrefix marks keys derived from a hash instead of the code itself.
const hashedPrefix = "x."

// CounterKey returns the KV key used to store the counter for code.
//
// Codes made only of NATS key-safe characters are used verbatim, so operators can
// find counters with `nats kv get`. Other codes (spaces, unicode, wildcards, empty
// tokens) and codes that would collide with the hashed namespace become
// "x.<xxh3-128 hex>". Two codes mapping to the same key would share one counter,
// which still never yields a duplicate id.
//
// Parameters:
//   - code: Logical counter name
//
// Returns:
//   - string: A valid NATS KV key
func CounterKey(code string) string {
	if isSafeKey(code) && !strings.HasPrefix(code, hashedPrefix) {
		return code
	}

	h := xxh3.HashString128(code)

	return fmt.Sprintf("%s%016x%016x", hashedPrefix, h.Hi, h.Lo)
}

// isSafeKey reports whether key satisfies the NATS KV key rules:
// characters [-/_=.a-zA-Z0-9], no leading or trailing dot, no empty tokens.
func isSafeKey(key string) bool {
	if key == "" || key[0] == '.' || key[len(key)-1] == '.' {
		return false
	}
	if strings.Contains(key, "..") {
		return false
	}

	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '/', c == '_', c == '=', c == '.':
		default:
			return false
		}
	}

	return true
}
