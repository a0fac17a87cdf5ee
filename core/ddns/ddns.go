package ddns

import (
	"context"
	"net/netip"
)

// Record is the provider-side view of a single address record.
type Record struct {
	Type    string
	Name    string
	Content string
	TTL     int
	Proxied bool
}

// IProvider wraps one DNS provider record. A provider instance is bound to a
// single zone/record pair and the credentials allowed to modify it.
type IProvider interface {
	String() string
	// Record returns the current details of the bound record.
	Record(ctx context.Context) (Record, error)
	// UpdateRecord rewrites the record content with addr, preserving the
	// record's name, TTL and proxy status. Issuing the same update twice
	// is safe.
	UpdateRecord(ctx context.Context, addr netip.Addr) (Record, error)
}
