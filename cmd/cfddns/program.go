package main

import (
	"os"

	svc "github.com/judwhite/go-svc"
	"github.com/rs/zerolog"

	"github.com/jxo-me/cfddns/config"
	"github.com/jxo-me/cfddns/pkg/overwatch"
	"github.com/jxo-me/cfddns/pkg/watcher"
)

type program struct {
	cfgFile      string
	outputFormat string

	log        *zerolog.Logger
	appService *AppService
}

func (p *program) Init(env svc.Environment) error {
	bootstrapLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg, err := config.ReadConfigFile(p.cfgFile, &bootstrapLog)
	if err != nil {
		return err
	}
	if p.outputFormat != "" {
		if err := cfg.Write(os.Stdout, p.outputFormat); err != nil {
			return err
		}
		os.Exit(0)
	}
	p.log = logFromConfig(cfg.Log)

	f, err := watcher.NewFile()
	if err != nil {
		p.log.Err(err).Msg("cannot create config file watcher")
		return err
	}
	configManager, err := config.NewFileManager(f, p.cfgFile, p.log)
	if err != nil {
		p.log.Err(err).Msg("cannot set up config file for monitoring")
		return err
	}
	p.log.Info().Str("path", p.cfgFile).Msg("monitoring config file")

	serviceCallback := func(name string, err error) {
		if err != nil {
			p.log.Err(err).Str("domain", name).Msg("updater exited with an error")
		}
	}
	serviceManager := overwatch.NewAppManager(serviceCallback)

	p.appService = NewAppService(configManager, serviceManager, p.log)
	return nil
}

func (p *program) Start() error {
	go func() {
		if err := p.appService.Run(); err != nil {
			p.log.Err(err).Msg("app service stopped")
		}
	}()
	return nil
}

func (p *program) Stop() error {
	p.appService.Shutdown()
	p.log.Info().Msg("all updaters shut down")
	return nil
}
