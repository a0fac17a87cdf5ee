package main

import (
	"github.com/rs/zerolog"

	"github.com/jxo-me/cfddns/config"
	"github.com/jxo-me/cfddns/config/parsing"
	"github.com/jxo-me/cfddns/pkg/overwatch"
)

// AppService ties the config manager to the service manager: every published
// configuration is diffed against the running updaters, replacing changed
// ones, removing vanished ones and leaving the rest untouched.
type AppService struct {
	configManager  config.Manager
	serviceManager overwatch.Manager
	log            *zerolog.Logger
	done           chan struct{}
}

func NewAppService(configManager config.Manager, serviceManager overwatch.Manager, log *zerolog.Logger) *AppService {
	return &AppService{
		configManager:  configManager,
		serviceManager: serviceManager,
		log:            log,
		done:           make(chan struct{}),
	}
}

// Run blocks delivering config updates until Shutdown, then stops every
// updater and waits for their loops to exit.
func (s *AppService) Run() error {
	err := s.configManager.Start(s)
	s.serviceManager.StopAll()
	close(s.done)
	return err
}

// Shutdown stops the config manager and waits for Run to finish tearing the
// updaters down.
func (s *AppService) Shutdown() {
	s.configManager.Shutdown()
	<-s.done
}

// ConfigDidUpdate implements config.Notifier.
func (s *AppService) ConfigDidUpdate(cfg config.Config) {
	services, err := parsing.BuildServices(cfg, s.log)
	if err != nil {
		s.log.Err(err).Msg("invalid configuration, keeping current updaters")
		return
	}

	keep := make(map[string]bool, len(services))
	for _, svc := range services {
		keep[svc.String()] = true
	}
	for _, running := range s.serviceManager.Services() {
		if !keep[running.String()] {
			s.serviceManager.Remove(running.String())
		}
	}
	for _, svc := range services {
		s.serviceManager.Add(svc)
	}
	s.log.Info().Int("domains", len(services)).Msg("configuration applied")
}
