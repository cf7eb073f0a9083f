package dataset

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Placeholder is the display value for absent fields and absent tools.
const Placeholder = "-"

// NormalizeTool trims a raw tool string and collapses the "no tool"
// spellings to the empty string: "", "n/a" (any case) and "-".
func NormalizeTool(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" || t == Placeholder || strings.EqualFold(t, "n/a") {
		return ""
	}
	return t
}

// ToolKey is the identity under which two raw tool strings are the same
// tool: the normalized name, lowercased. Empty means "no tool".
func ToolKey(raw string) string {
	return strings.ToLower(NormalizeTool(raw))
}

// FormatTool renders a normalized tool for display, using the placeholder
// for absent tools.
func FormatTool(tool string) string {
	if tool == "" {
		return Placeholder
	}
	return tool
}

// FormatLevel renders a capability level for display.
func FormatLevel(level *int) string {
	if level == nil {
		return Placeholder
	}
	return strconv.Itoa(*level)
}

// ParseLevel interprets a raw capability level value. Numbers and numeric
// strings parse to an integer; null, empty, "NA" and anything non-numeric
// mean "no level informed". Out-of-range values pass through untouched;
// range validity is the caller's concern.
func ParseLevel(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		n := int(num)
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// orPlaceholder fills absent activity fields so malformed entries stay
// renderable instead of failing the load.
func orPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}
