package activity

import (
	"strings"
	"unicode/utf8"
)

// Sanitization limits for logged request context.
const (
	MaxDepth      = 4
	MaxArrayItems = 40
	MaxStringLen  = 400
)

// redactedKeys are omitted from logged payloads entirely. Matching is
// case-insensitive on the full key name.
var redactedKeys = map[string]struct{}{
	"_csrf":         {},
	"password":      {},
	"password_hash": {},
	"token":         {},
	"secret":        {},
	"secret_enc":    {},
}

// IsRedactedKey reports whether a payload key must be omitted from logs.
func IsRedactedKey(key string) bool {
	_, ok := redactedKeys[strings.ToLower(key)]
	return ok
}

// Sanitize walks a decoded JSON value depth-first and returns a copy safe for
// logging: redacted keys dropped, arrays cut to MaxArrayItems, strings cut to
// MaxStringLen, and anything nested deeper than MaxDepth replaced with a
// placeholder.
func Sanitize(v any) any {
	return sanitizeValue(v, 0)
}

func sanitizeValue(v any, depth int) any {
	switch val := v.(type) {
	case map[string]any:
		if depth >= MaxDepth {
			return "[max depth]"
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			if IsRedactedKey(k) {
				continue
			}
			out[k] = sanitizeValue(item, depth+1)
		}
		return out
	case []any:
		if depth >= MaxDepth {
			return "[max depth]"
		}
		n := len(val)
		truncated := false
		if n > MaxArrayItems {
			n = MaxArrayItems
			truncated = true
		}
		out := make([]any, 0, n+1)
		for i := 0; i < n; i++ {
			out = append(out, sanitizeValue(val[i], depth+1))
		}
		if truncated {
			out = append(out, "[truncated]")
		}
		return out
	case string:
		if len(val) > MaxStringLen {
			// Back off to a rune boundary so the cut never produces
			// invalid UTF-8.
			cut := MaxStringLen
			for cut > 0 && !utf8.RuneStart(val[cut]) {
				cut--
			}
			return val[:cut] + "…"
		}
		return val
	default:
		return v
	}
}
