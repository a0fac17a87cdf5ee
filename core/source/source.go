package source

import (
	"context"
	"net/netip"
)

// ISource resolves the public IP address the host is currently reachable at.
// Implementations perform a single lookup per call; retry policy belongs to
// the caller.
type ISource interface {
	String() string
	// IP returns the current public address of this machine.
	IP(ctx context.Context) (netip.Addr, error)
}
