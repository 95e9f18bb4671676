package dns

import (
	"strings"
)

// TrimFQDN removes the trailing root dot from a fully-qualified name.
func TrimFQDN(fqdn string) string {
	return strings.TrimSuffix(fqdn, ".")
}

// ZoneCandidates returns the dot-suffixes of fqdn that could be a zone, longest first.
// e.g. "a.b.example.com" → ["a.b.example.com", "b.example.com", "example.com"]
// A single label yields no candidates.
func ZoneCandidates(fqdn string) []string {
	labels := strings.Split(TrimFQDN(fqdn), ".")
	if len(labels) < 2 {
		return nil
	}
	candidates := make([]string, 0, len(labels)-1)
	for i := 0; i < len(labels)-1; i++ {
		candidates = append(candidates, strings.Join(labels[i:], "."))
	}
	return candidates
}

// RelativeName expresses fqdn relative to zone.
// e.g. ("example.com", "example.com") → "@"
// e.g. ("_acme-challenge.sub.example.com", "example.com") → "_acme-challenge.sub"
// Names outside the zone are returned unchanged.
func RelativeName(fqdn, zone string) string {
	fqdn = TrimFQDN(fqdn)
	if fqdn == zone {
		return "@"
	}
	if suffix := "." + zone; strings.HasSuffix(fqdn, suffix) {
		return strings.TrimSuffix(fqdn, suffix)
	}
	return fqdn
}
