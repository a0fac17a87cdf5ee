package util

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every outbound call so a hung request cannot starve
// a domain's own schedule. It must stay well under the shortest interval an
// operator is likely to configure.
const DefaultTimeout = 30 * time.Second

// CreateHTTPClient builds the shared outbound client. A nil proxy falls back
// to the process environment (HTTP_PROXY and friends). http, https and
// socks5 proxy URLs are supported; basic-auth credentials travel in the URL
// userinfo.
func CreateHTTPClient(proxy *url.URL, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
