package util

import (
	"net/url"
	"os"
	"regexp"
)

var windowsVarPattern = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// ExpandEnvUniversal expands both Unix-style ($VAR, ${VAR}) and Windows-style (%VAR%) environment variables.
// Undefined variables expand to the empty string in both styles.
func ExpandEnvUniversal(s string) string {
	unixExpanded := os.ExpandEnv(s)
	return windowsVarPattern.ReplaceAllStringFunc(unixExpanded, func(match string) string {
		if value, ok := os.LookupEnv(match[1 : len(match)-1]); ok {
			return value
		}
		return ""
	})
}

// Snippet returns a short prefix of a byte slice, useful for logging.
func Snippet(b []byte) string {
	const maxLen = 200
	runes := []rune(string(b))
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return string(b)
}

// secretParams are query parameters masked by RedactURL.
var secretParams = []string{"apikey", "hash", "api_dev_key"}

// RedactURL returns rawURL with credential-bearing query parameters masked.
// Unparsable input is returned as a fixed placeholder rather than verbatim.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparsable url>"
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
