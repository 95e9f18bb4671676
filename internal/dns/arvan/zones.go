package arvan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yuriy-kovalchuk/arvan-dns01/internal/dns"
)

// ErrZoneNotFound is returned when no zone in the account owns a hostname.
var ErrZoneNotFound = errors.New("not found in ArvanCloud account")

// zone is a single entry of the domains listing.
type zone struct {
	Name string `json:"name"`
}

// zoneListResponse is the shape returned by the paginated domains listing.
type zoneListResponse struct {
	Data []zone `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

// ResolveZone returns the longest zone in the account that is a dot-suffix of
// validationName (the name itself included). The zone list is fetched fresh on
// every call.
func (p *Provider) ResolveZone(ctx context.Context, validationName string) (string, error) {
	zones, err := p.listZones(ctx)
	if err != nil {
		return "", fmt.Errorf("arvan: error finding domain: %w", err)
	}

	names := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		names[z.Name] = struct{}{}
	}

	for _, candidate := range dns.ZoneCandidates(validationName) {
		if _, ok := names[candidate]; ok {
			p.log.V(1).Info("resolved zone", "hostname", validationName, "zone", candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("arvan: domain %s %w", validationName, ErrZoneNotFound)
}

// listZones pages through the account's domains until the last page.
func (p *Provider) listZones(ctx context.Context) ([]zone, error) {
	var zones []zone
	for page := 1; ; page++ {
		resp, err := p.doRequest(ctx, http.MethodGet, "?page="+strconv.Itoa(page), nil)
		if err != nil {
			return nil, err
		}

		var lr zoneListResponse
		err = func() error {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("domains page %d returned status %d", page, resp.StatusCode)
			}
			if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
				return fmt.Errorf("decode domains page %d: %w", page, err)
			}
			return nil
		}()
		if err != nil {
			return nil, err
		}

		zones = append(zones, lr.Data...)

		current, last := lr.Meta.CurrentPage, lr.Meta.LastPage
		if current == 0 {
			current = 1
		}
		if last == 0 {
			last = 1
		}
		// Stop at last_page even if the API keeps echoing the same current_page.
		if current >= last || page >= last {
			p.log.V(1).Info("listed zones", "count", len(zones), "pages", page)
			return zones, nil
		}
	}
}
