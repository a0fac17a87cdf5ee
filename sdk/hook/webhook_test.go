package hook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecGetWithPlaceholders(t *testing.T) {
	var gotMethod, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
	}))
	defer ts.Close()

	w := New(ts.URL+"/notify?domain=#{domain}&addr=#{addr}&result=#{result}", "", "", ts.Client(), zerolog.Nop())
	w.Exec(context.Background(), "home.example.com", netip.MustParseAddr("203.0.113.5"), ResultSuccess)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "domain=home.example.com&addr=203.0.113.5&result=Success", gotQuery)
}

func TestExecPostJSONBody(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer ts.Close()

	w := New(ts.URL, `{"domain":"#{domain}","addr":"#{addr}","result":"#{result}"}`, "", ts.Client(), zerolog.Nop())
	w.Exec(context.Background(), "home.example.com", netip.MustParseAddr("2001:db8::1"), ResultFailure)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"domain":"home.example.com","addr":"2001:db8::1","result":"Failure"}`, gotBody)
}

func TestExecPostPlainBody(t *testing.T) {
	var gotContentType, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	defer ts.Close()

	w := New(ts.URL, "domain=#{domain}&result=#{result}", "", ts.Client(), zerolog.Nop())
	w.Exec(context.Background(), "home", netip.MustParseAddr("203.0.113.5"), ResultSuccess)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "domain=home&result=Success", gotBody)
}

func TestExecSendsConfiguredHeaders(t *testing.T) {
	var gotAuth, gotCustom string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Notify")
	}))
	defer ts.Close()

	w := New(ts.URL, "", "Authorization: Bearer tok123\nX-Notify: ddns\nmalformed line\n", ts.Client(), zerolog.Nop())
	w.Exec(context.Background(), "home", netip.MustParseAddr("203.0.113.5"), ResultSuccess)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "ddns", gotCustom)
}

func TestExecNilOrEmptyIsNoop(t *testing.T) {
	var nilHook *Webhook
	nilHook.Exec(context.Background(), "home", netip.MustParseAddr("203.0.113.5"), ResultSuccess)

	empty := New("", "", "", nil, zerolog.Nop())
	empty.Exec(context.Background(), "home", netip.MustParseAddr("203.0.113.5"), ResultSuccess)
}

func TestExecReportsNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer ts.Close()

	w := New(ts.URL, "", "", ts.Client(), zerolog.Nop())
	err := w.exec(context.Background(), "home", netip.MustParseAddr("203.0.113.5"), ResultFailure)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders("Authorization: Bearer x\r\n\n  X-One :  1  \nno-colon-line")
	assert.Equal(t, map[string]string{
		"Authorization": "Bearer x",
		"X-One":         "1",
	}, headers)
}
