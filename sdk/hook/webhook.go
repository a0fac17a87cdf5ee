package hook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Result values interpolated into webhook templates.
const (
	ResultSuccess = "Success"
	ResultFailure = "Failure"
)

// Webhook calls an operator URL after each update attempt for a changed
// address. Placeholders #{domain}, #{addr} and #{result} are replaced in the
// URL and the request body.
type Webhook struct {
	URL         string
	RequestBody string
	Headers     string

	client *http.Client
	log    zerolog.Logger
}

// New creates a Webhook. A nil client falls back to http.DefaultClient.
func New(url, requestBody, headers string, client *http.Client, log zerolog.Logger) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{
		URL:         url,
		RequestBody: requestBody,
		Headers:     headers,
		client:      client,
		log:         log,
	}
}

func (w *Webhook) String() string {
	return "webhook"
}

// Exec fires the hook. Failures are logged only; the caller's state machine
// never depends on webhook delivery.
func (w *Webhook) Exec(ctx context.Context, domain string, addr netip.Addr, result string) {
	if w == nil || w.URL == "" {
		return
	}
	if err := w.exec(ctx, domain, addr, result); err != nil {
		w.log.Err(err).Str("domain", domain).Msg("webhook call failed")
		return
	}
	w.log.Debug().Str("domain", domain).Str("result", result).Msg("webhook delivered")
}

func (w *Webhook) exec(ctx context.Context, domain string, addr netip.Addr, result string) error {
	replace := func(s string) string {
		s = strings.ReplaceAll(s, "#{domain}", domain)
		s = strings.ReplaceAll(s, "#{addr}", addr.String())
		return strings.ReplaceAll(s, "#{result}", result)
	}

	method := http.MethodGet
	body := ""
	contentType := "application/x-www-form-urlencoded"
	if w.RequestBody != "" {
		method = http.MethodPost
		body = replace(w.RequestBody)
		if json.Valid([]byte(body)) {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, replace(w.URL), strings.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	for key, value := range parseHeaders(w.Headers) {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("webhook answered %s", resp.Status)
	}
	return nil
}

// parseHeaders splits one "Name: value" pair per line, tolerating malformed
// lines.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}
