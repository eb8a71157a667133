package activity

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_RedactsSensitiveKeys(t *testing.T) {
	in := map[string]any{
		"name":     "Blue",
		"password": "hunter2",
		"_csrf":    "tok",
		"Token":    "abc",
		"nested": map[string]any{
			"secret": "shh",
			"ok":     1,
		},
	}

	out, ok := Sanitize(in).(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "Blue", out["name"])
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "_csrf")
	assert.NotContains(t, out, "Token", "redaction is case-insensitive")

	nested := out["nested"].(map[string]any)
	assert.NotContains(t, nested, "secret")
	assert.Equal(t, 1, nested["ok"])
}

func TestSanitize_DepthLimit(t *testing.T) {
	deep := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"d": map[string]any{"e": "too deep"},
				},
			},
		},
	}

	out := Sanitize(deep).(map[string]any)
	a := out["a"].(map[string]any)
	b := a["b"].(map[string]any)
	c := b["c"].(map[string]any)
	assert.Equal(t, "[max depth]", c["d"])
}

func TestSanitize_TruncatesArraysAndStrings(t *testing.T) {
	items := make([]any, MaxArrayItems+5)
	for i := range items {
		items[i] = i
	}
	long := strings.Repeat("x", MaxStringLen+10)

	out := Sanitize(map[string]any{"items": items, "note": long}).(map[string]any)

	arr := out["items"].([]any)
	assert.Len(t, arr, MaxArrayItems+1)
	assert.Equal(t, "[truncated]", arr[MaxArrayItems])

	note := out["note"].(string)
	assert.True(t, strings.HasPrefix(note, strings.Repeat("x", MaxStringLen)))
	assert.True(t, strings.HasSuffix(note, "…"))
}

func TestSanitize_TruncatesOnRuneBoundary(t *testing.T) {
	// Three bytes per rune, so the byte limit lands mid-rune.
	out := Sanitize(strings.Repeat("日", MaxStringLen)).(string)

	assert.True(t, utf8.ValidString(out), "truncation never splits a rune")
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.LessOrEqual(t, len(out), MaxStringLen+len("…"))
}

func TestSanitize_Scalars(t *testing.T) {
	assert.Equal(t, 42, Sanitize(42))
	assert.Equal(t, true, Sanitize(true))
	assert.Nil(t, Sanitize(nil))
}
