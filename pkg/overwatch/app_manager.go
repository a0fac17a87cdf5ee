package overwatch

import (
	"sync"

	"github.com/jxo-me/cfddns/core/service"
)

// ServiceCallback reports that a service's run loop finished. The first
// parameter is the service name, the second an optional error if the loop
// failed.
type ServiceCallback func(string, error)

// AppManager is the default Manager implementation. Each added service runs
// on its own goroutine; services share nothing but this bookkeeping.
type AppManager struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	services map[string]service.IDDNSService
	callback ServiceCallback
}

// NewAppManager creates a manager. The callback may be nil.
func NewAppManager(callback ServiceCallback) *AppManager {
	return &AppManager{
		services: make(map[string]service.IDDNSService),
		callback: callback,
	}
}

// Add takes in a new service to manage. An already-running service with the
// same name is kept when its Hash matches, stopped and replaced otherwise.
func (m *AppManager) Add(svc service.IDDNSService) {
	m.mu.Lock()
	current, ok := m.services[svc.String()]
	m.mu.Unlock()
	if ok {
		if current.Hash() == svc.Hash() {
			return
		}
		_ = current.Stop()
	}

	m.mu.Lock()
	m.services[svc.String()] = svc
	m.mu.Unlock()

	m.wg.Add(1)
	go m.serviceRun(svc)
}

// Remove stops the named service and forgets it.
func (m *AppManager) Remove(name string) {
	m.mu.Lock()
	current, ok := m.services[name]
	delete(m.services, name)
	m.mu.Unlock()
	if ok {
		_ = current.Stop()
	}
}

// Services returns the currently managed services.
func (m *AppManager) Services() []service.IDDNSService {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([]service.IDDNSService, 0, len(m.services))
	for _, value := range m.services {
		values = append(values, value)
	}
	return values
}

// StopAll stops every service and waits for all run loops to exit. Services
// finish their in-flight cycle before stopping.
func (m *AppManager) StopAll() {
	for _, svc := range m.Services() {
		m.Remove(svc.String())
	}
	m.wg.Wait()
}

func (m *AppManager) serviceRun(svc service.IDDNSService) {
	defer m.wg.Done()
	err := svc.Start()
	if m.callback != nil {
		m.callback(svc.String(), err)
	}
}
