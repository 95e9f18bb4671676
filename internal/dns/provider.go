package dns

import "context"

// Challenge is a single DNS-01 validation request handed over by the ACME client.
type Challenge struct {
	Domain         string // domain being certified, e.g. "example.com"
	ValidationName string // FQDN of the TXT record, e.g. "_acme-challenge.example.com"
	Token          string // value to publish
}

// Authenticator is the interface that DNS-01 providers must implement.
//
// Perform must either publish the token or return an error that aborts issuance.
// Cleanup is best-effort and never reports failure to the caller.
type Authenticator interface {
	Perform(ctx context.Context, ch Challenge) error
	Cleanup(ctx context.Context, ch Challenge)
}

// ZoneResolver is implemented by authenticators that can report which zone
// owns a hostname.
type ZoneResolver interface {
	ResolveZone(ctx context.Context, hostname string) (string, error)
}
