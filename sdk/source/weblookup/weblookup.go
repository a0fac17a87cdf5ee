package weblookup

import (
	"context"
	"io"
	"net/http"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// Endpoint returns the caller's public address as a bare IP in the body.
const Endpoint = "https://checkip.amazonaws.com/"

const maxBodySize = 256

// WebLookup resolves the public IP through a fixed external lookup service.
type WebLookup struct {
	client   *http.Client
	endpoint string
}

// New creates a WebLookup using client for outbound calls. A nil client
// falls back to http.DefaultClient.
func New(client *http.Client) *WebLookup {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebLookup{
		client:   client,
		endpoint: Endpoint,
	}
}

func (w *WebLookup) String() string {
	return "weblookup"
}

// IP fetches the lookup page and parses the body as a bare IPv4 or IPv6
// address.
func (w *WebLookup) IP(ctx context.Context) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint, nil)
	if err != nil {
		return netip.Addr{}, errors.Wrap(err, "weblookup: build request")
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := w.client.Do(req)
	if err != nil {
		return netip.Addr{}, errors.Wrap(err, "weblookup: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return netip.Addr{}, errors.Errorf("weblookup: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return netip.Addr{}, errors.Wrap(err, "weblookup: read response")
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return netip.Addr{}, errors.Wrap(err, "weblookup: response body is not an IP address")
	}
	return addr, nil
}
