package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TokenBytes is the entropy of a share token: 144 bits.
const TokenBytes = 18

// NewToken returns a URL-safe random token of TokenBytes bytes (24 characters).
func NewToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExpirationHours interprets an optional client-supplied duration in hours.
// Integers and integral strings are accepted, JSON numbers are truncated and
// anything else yields def. The result is always clamped to [lo, hi].
func ExpirationHours(raw any, def, lo, hi int) int {
	return clamp(parseHours(raw, def, lo, hi), lo, hi)
}

func parseHours(raw any, def, lo, hi int) int {
	switch v := raw.(type) {
	case nil:
		return def
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return clampInt64(v, lo, hi)
	case float64:
		return truncateFloat(v, def, lo, hi)
	case float32:
		return truncateFloat(float64(v), def, lo, hi)
	case interface{ Int64() (int64, error) }:
		if n, err := v.Int64(); err == nil {
			return clampInt64(n, lo, hi)
		}
		return def
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return def
		}
		return clampInt64(n, lo, hi)
	default:
		return def
	}
}

func truncateFloat(f float64, def, lo, hi int) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	f = math.Trunc(f)
	if f <= float64(lo) {
		return lo
	}
	if f >= float64(hi) {
		return hi
	}
	return int(f)
}

func clampInt64(n int64, lo, hi int) int {
	if n <= int64(lo) {
		return lo
	}
	if n >= int64(hi) {
		return hi
	}
	return int(n)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
