package arvan

import (
	"regexp"
	"strings"
)

var apikeyLiteral = regexp.MustCompile(`(?i)apikey`)

// NormalizeAPIKey strips every case-insensitive occurrence of the literal
// "apikey" from raw and trims the surrounding whitespace, so keys pasted
// with or without the scheme prefix end up identical.
func NormalizeAPIKey(raw string) string {
	return strings.TrimSpace(apikeyLiteral.ReplaceAllString(raw, ""))
}

// AuthorizationHeader returns the Authorization header value for a normalized key.
func AuthorizationHeader(key string) string {
	return "Apikey " + key
}
