package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testZoneID   = "023e105f4ecef8ad9ca31a8372d0c353"
	testRecordID = "372e67954025e0ba6aaa6d586b9e0b59"
)

type recordBody struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied *bool  `json:"proxied"`
}

func recordJSON(content string) string {
	return fmt.Sprintf(`{
		"success": true,
		"errors": [],
		"messages": [],
		"result": {
			"id": %q,
			"zone_id": %q,
			"type": "A",
			"name": "home.example.com",
			"content": %q,
			"ttl": 120,
			"proxied": true
		}
	}`, testRecordID, testZoneID, content)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := New("test-token", testZoneID, testRecordID,
		WithHTTPClient(ts.Client()),
		WithBaseURL(ts.URL))
	assert.NoError(t, err)
	return client, ts
}

func TestUpdateRecordPreservesDetails(t *testing.T) {
	recordPath := fmt.Sprintf("/zones/%s/dns_records/%s", testZoneID, testRecordID)
	var updates []recordBody

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, recordPath, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, recordJSON("198.51.100.1"))
		default:
			var body recordBody
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			updates = append(updates, body)
			fmt.Fprint(w, recordJSON(body.Content))
		}
	}))

	record, err := client.UpdateRecord(context.Background(), netip.MustParseAddr("203.0.113.5"))
	assert.NoError(t, err)
	assert.Equal(t, "203.0.113.5", record.Content)
	assert.Equal(t, "home.example.com", record.Name)

	if assert.Len(t, updates, 1) {
		assert.Equal(t, "A", updates[0].Type)
		assert.Equal(t, "home.example.com", updates[0].Name)
		assert.Equal(t, "203.0.113.5", updates[0].Content)
		assert.Equal(t, 120, updates[0].TTL)
		if assert.NotNil(t, updates[0].Proxied) {
			assert.True(t, *updates[0].Proxied)
		}
	}
}

func TestRecordCachesDetails(t *testing.T) {
	gets := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		gets++
		fmt.Fprint(w, recordJSON("198.51.100.1"))
	}))

	ctx := context.Background()
	first, err := client.Record(ctx)
	assert.NoError(t, err)
	second, err := client.Record(ctx)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gets, "record details must be fetched once and then reused")
}

func TestUpdateRecordForbidden(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			fmt.Fprint(w, recordJSON("198.51.100.1"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{
			"success": false,
			"errors": [{"code": 9109, "message": "Invalid access token"}],
			"messages": [],
			"result": null
		}`)
	}))

	_, err := client.UpdateRecord(context.Background(), netip.MustParseAddr("203.0.113.5"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid access token")
}

func TestUpdateRecordProviderRejection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			fmt.Fprint(w, recordJSON("198.51.100.1"))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{
			"success": false,
			"errors": [{"code": 9005, "message": "Content for A record must be a valid IPv4 address."}],
			"messages": [],
			"result": null
		}`)
	}))

	_, err := client.UpdateRecord(context.Background(), netip.MustParseAddr("203.0.113.5"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Content for A record must be a valid IPv4 address.")
}

func TestRecordTypeFollowsAddressFamily(t *testing.T) {
	assert.Equal(t, "A", recordType(netip.MustParseAddr("203.0.113.5")))
	assert.Equal(t, "AAAA", recordType(netip.MustParseAddr("2001:db8::1")))
}
