package newsletter

import (
	"strings"
	"time"
)

// ExpandVars performs simple placeholder substitutions for template strings
// used in config-provided text fields (e.g., the digest title).
//
// Supported variables:
// - {.CurrentDate} => formatted as YYYY-MM-DD (UTC)
// - {.Scope} => the community the digest covers
func ExpandVars(s string, now time.Time, scope string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	date := now.UTC().Format("2006-01-02")
	out := strings.ReplaceAll(s, "{.CurrentDate}", date)
	out = strings.ReplaceAll(out, "{.Scope}", scope)
	return out
}
