package arvan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yuriy-kovalchuk/arvan-dns01/internal/dns"
)

const (
	recordType = "txt"
	recordTTL  = 120
)

// txtRecordRequest is the body of a dns-records create call.
type txtRecordRequest struct {
	Type  string   `json:"type"`
	Name  string   `json:"name"`
	Cloud bool     `json:"cloud"`
	TTL   int      `json:"ttl"`
	Value txtValue `json:"value"`
}

type txtValue struct {
	Text string `json:"text"`
}

// recordListResponse is the shape returned by the dns-records search.
type recordListResponse struct {
	Data []recordRow `json:"data"`
}

// recordRow represents a single record from the search response.
type recordRow struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

func recordsPath(zone string) string {
	return "/" + url.PathEscape(zone) + "/dns-records"
}

// AddTXTRecord publishes token as a TXT record at validationName.
// A record that already exists is treated as success.
func (p *Provider) AddTXTRecord(ctx context.Context, domain, validationName, token string) error {
	zone, err := p.ResolveZone(ctx, validationName)
	if err != nil {
		return err
	}
	name := dns.RelativeName(validationName, zone)

	p.log.Info("creating TXT record", "domain", domain, "zone", zone, "name", name)

	body := txtRecordRequest{
		Type:  recordType,
		Name:  name,
		Cloud: false,
		TTL:   recordTTL,
		Value: txtValue{Text: token},
	}
	resp, err := p.doRequest(ctx, http.MethodPost, recordsPath(zone), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		p.log.Info("TXT record created", "zone", zone, "name", name)
		return nil
	}

	respBody, readErr := io.ReadAll(resp.Body)
	if strings.Contains(strings.ToLower(string(respBody)), "already exists") {
		p.log.Info("TXT record already exists", "zone", zone, "name", name)
		return nil
	}
	if readErr != nil {
		return fmt.Errorf("arvan: error adding TXT record (status %d): read response body: %w (partial body: %s)", resp.StatusCode, readErr, string(respBody))
	}
	return fmt.Errorf("arvan: error adding TXT record (status %d): %s", resp.StatusCode, string(respBody))
}

// DeleteTXTRecord removes the TXT record at validationName. Errors are logged,
// never returned.
func (p *Provider) DeleteTXTRecord(ctx context.Context, domain, validationName, token string) {
	if err := p.deleteTXTRecord(ctx, validationName); err != nil {
		p.log.Error(err, "cleanup of TXT record failed, ignoring", "domain", domain, "hostname", validationName)
	}
}

func (p *Provider) deleteTXTRecord(ctx context.Context, validationName string) error {
	zone, err := p.ResolveZone(ctx, validationName)
	if err != nil {
		return err
	}
	name := dns.RelativeName(validationName, zone)

	ids, err := p.findTXTRecords(ctx, zone, name)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		p.log.V(1).Info("no TXT record to delete", "zone", zone, "name", name)
		return nil
	}

	var errs []error
	for _, id := range ids {
		if err := p.deleteRecord(ctx, zone, id); err != nil {
			errs = append(errs, err)
			continue
		}
		p.log.Info("TXT record deleted", "zone", zone, "name", name, "id", id)
	}
	return errors.Join(errs...)
}

// findTXTRecords returns the IDs of TXT records in zone whose name is exactly name.
// The API search is fuzzy, so matches are re-checked here.
func (p *Provider) findTXTRecords(ctx context.Context, zone, name string) ([]string, error) {
	query := url.Values{}
	query.Set("type", recordType)
	query.Set("search", name)

	resp, err := p.doRequest(ctx, http.MethodGet, recordsPath(zone)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arvan: list dns-records returned status %d", resp.StatusCode)
	}

	var lr recordListResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("arvan: decode dns-records response: %w", err)
	}

	var ids []string
	for _, row := range lr.Data {
		if strings.EqualFold(row.Type, recordType) && row.Name == name {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

func (p *Provider) deleteRecord(ctx context.Context, zone, id string) error {
	resp, err := p.doRequest(ctx, http.MethodDelete, recordsPath(zone)+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("arvan: delete record %s returned status %d: %s", id, resp.StatusCode, string(respBody))
	}
	return nil
}
