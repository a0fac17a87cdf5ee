package standalone

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

const maxBodySize = 256

// ErrContentType marks a standalone server answering with anything other
// than text/plain.
var ErrContentType = errors.New("standalone: response is not text/plain")

// Standalone resolves the public IP from an operator-hosted endpoint that
// answers GET with status 200, Content-Type text/plain and the literal
// address as the body.
type Standalone struct {
	client *http.Client
	url    string
}

// New creates a Standalone source for the given endpoint URL. A nil client
// falls back to http.DefaultClient.
func New(client *http.Client, url string) *Standalone {
	if client == nil {
		client = http.DefaultClient
	}
	return &Standalone{
		client: client,
		url:    url,
	}
}

func (s *Standalone) String() string {
	return "standalone " + s.url
}

// IP queries the standalone server. Surrounding whitespace in the body is
// tolerated and trimmed.
func (s *Standalone) IP(ctx context.Context) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "standalone: build request for %s", s.url)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "standalone: request to %s failed", s.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return netip.Addr{}, errors.Errorf("standalone: %s answered %s", s.url, resp.Status)
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/plain" {
		return netip.Addr{}, errors.Wrapf(ErrContentType, "standalone: %s answered %q", s.url, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "standalone: read response from %s", s.url)
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return netip.Addr{}, errors.Wrapf(err, "standalone: %s returned an unparseable address", s.url)
	}
	return addr, nil
}
