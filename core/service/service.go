package service

// IDDNSService is a runnable unit owned by the service manager.
type IDDNSService interface {
	String() string
	// Hash identifies the configuration the service was built from, so the
	// manager can tell a changed service from an identical one on reload.
	Hash() string
	Start() error
	Stop() error
}
