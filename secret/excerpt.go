package secret

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	masker "github.com/goliatone/go-masker"
)

// MaxExcerpt caps the size of a body excerpt in diagnostics.
const MaxExcerpt = 512

// maskedFields are response fields whose values are masked in excerpts.
var maskedFields = []string{"secretValue", "secretComment", "accessToken", "token"}

// maskedPair finds secret-bearing fields in bodies that are not valid JSON,
// such as HTML error pages, form echoes or cut-off JSON. Group 3 is the value.
var maskedPair = regexp.MustCompile(`\b(` + strings.Join(maskedFields, "|") + `)("?\s*[:=]\s*"?)([^"'&\s<>,;{}\[\]]+)`)

// Excerpt renders body for debug diagnostics. Values of secret-bearing fields
// are masked and the result is truncated to MaxExcerpt bytes.
func Excerpt(body []byte) string {
	var s string
	var doc any
	if err := json.Unmarshal(body, &doc); err == nil {
		if b, err := json.Marshal(maskTree(doc)); err == nil {
			s = string(b)
		}
	}
	if s == "" {
		s = maskPairs(string(body))
	}

	if len(s) <= MaxExcerpt {
		return strings.ToValidUTF8(s, "?")
	}
	cut := MaxExcerpt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.ToValidUTF8(s[:cut], "?") + "...(truncated)"
}

func maskTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if s, ok := child.(string); ok && isMaskedField(k) {
				t[k] = maskValue(s)
				continue
			}
			t[k] = maskTree(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = maskTree(child)
		}
		return t
	default:
		return v
	}
}

func maskPairs(s string) string {
	return maskedPair.ReplaceAllStringFunc(s, func(match string) string {
		m := maskedPair.FindStringSubmatch(match)
		return m[1] + m[2] + maskValue(m[3])
	})
}

func isMaskedField(name string) bool {
	for _, f := range maskedFields {
		if f == name {
			return true
		}
	}
	return false
}

// maskValue hides a secret value. Short values are fully starred so nothing
// of them survives.
func maskValue(value string) string {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return ""
	}
	if n <= 8 {
		return strings.Repeat("*", n)
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	runes := []rune(value)
	return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
}
