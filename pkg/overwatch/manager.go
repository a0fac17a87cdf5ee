package overwatch

import "github.com/jxo-me/cfddns/core/service"

// Manager owns the set of running updater services.
type Manager interface {
	Add(service.IDDNSService)
	Remove(string)
	Services() []service.IDDNSService
	StopAll()
}
