package cloudflare

import (
	"context"
	"net/http"
	"net/netip"

	cf "github.com/cloudflare/cloudflare-go"
	"github.com/pkg/errors"

	"github.com/jxo-me/cfddns/core/ddns"
)

const Code = "cloudflare"

// Option adjusts client construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    string
}

// WithHTTPClient routes API calls through client, typically to apply the
// configured proxy transport and timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithBaseURL points the client at an alternative API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// Client updates a single Cloudflare address record. Authentication uses the
// API token alone; tokens can be scoped to the zone and revoked without
// touching account credentials.
type Client struct {
	api      *cf.API
	rc       *cf.ResourceContainer
	recordID string

	// record caches the details fetched from the provider so updates can
	// preserve name, TTL and proxy status. It is never used for change
	// detection.
	record *cf.DNSRecord
}

// New creates a client bound to one zone/record pair.
func New(token, zoneID, recordID string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var cfOpts []cf.Option
	if o.httpClient != nil {
		cfOpts = append(cfOpts, cf.HTTPClient(o.httpClient))
	}
	if o.baseURL != "" {
		cfOpts = append(cfOpts, cf.BaseURL(o.baseURL))
	}

	api, err := cf.NewWithAPIToken(token, cfOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "cloudflare: create api client")
	}
	return &Client{
		api:      api,
		rc:       cf.ZoneIdentifier(zoneID),
		recordID: recordID,
	}, nil
}

func (c *Client) String() string {
	return Code
}

// Record fetches the bound record's details, returning the cached copy when
// one is already held.
func (c *Client) Record(ctx context.Context) (ddns.Record, error) {
	if c.record != nil {
		return toRecord(*c.record), nil
	}
	record, err := c.api.GetDNSRecord(ctx, c.rc, c.recordID)
	if err != nil {
		return ddns.Record{}, errors.Wrapf(err, "cloudflare: get record %s in zone %s", c.recordID, c.rc.Identifier)
	}
	c.record = &record
	return toRecord(record), nil
}

// UpdateRecord rewrites the record content with addr. The record type
// follows the address family; name, TTL and proxy status are preserved from
// the provider's own details. A failed call leaves the provider state and
// the cached details untouched.
func (c *Client) UpdateRecord(ctx context.Context, addr netip.Addr) (ddns.Record, error) {
	current, err := c.Record(ctx)
	if err != nil {
		return ddns.Record{}, err
	}

	proxied := current.Proxied
	updated, err := c.api.UpdateDNSRecord(ctx, c.rc, cf.UpdateDNSRecordParams{
		ID:      c.recordID,
		Type:    recordType(addr),
		Name:    current.Name,
		Content: addr.String(),
		TTL:     current.TTL,
		Proxied: &proxied,
	})
	if err != nil {
		return ddns.Record{}, errors.Wrapf(err, "cloudflare: update record %s in zone %s", c.recordID, c.rc.Identifier)
	}
	c.record = &updated
	return toRecord(updated), nil
}

func toRecord(r cf.DNSRecord) ddns.Record {
	record := ddns.Record{
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		TTL:     r.TTL,
	}
	if r.Proxied != nil {
		record.Proxied = *r.Proxied
	}
	return record
}

func recordType(addr netip.Addr) string {
	if addr.Is4() {
		return "A"
	}
	return "AAAA"
}
