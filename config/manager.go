package config

import (
	"github.com/jxo-me/cfddns/pkg/watcher"
	"github.com/rs/zerolog"
)

// Notifier receives every successfully parsed configuration, once at startup
// and again after each file change.
type Notifier interface {
	ConfigDidUpdate(Config)
}

// Manager polls the app to get the currently loaded configuration and to
// shut the source of updates down.
type Manager interface {
	Start(Notifier) error
	Shutdown()
}

// FileManager watches the configuration file and republishes it on change.
// A file edit that fails to parse keeps the previous configuration running.
type FileManager struct {
	watcher  watcher.IFile
	notifier Notifier
	path     string
	log      *zerolog.Logger

	// ReadConfig is swappable for tests.
	ReadConfig func(string, *zerolog.Logger) (Config, error)
}

// NewFileManager creates a FileManager watching configPath.
func NewFileManager(w watcher.IFile, configPath string, log *zerolog.Logger) (*FileManager, error) {
	m := &FileManager{
		watcher:    w,
		path:       configPath,
		log:        log,
		ReadConfig: ReadConfigFile,
	}
	if err := w.Add(configPath); err != nil {
		return nil, err
	}
	return m, nil
}

// Start publishes the initial configuration and then blocks delivering file
// change notifications until Shutdown.
func (m *FileManager) Start(notifier Notifier) error {
	m.notifier = notifier

	cfg, err := m.GetConfig()
	if err != nil {
		return err
	}
	notifier.ConfigDidUpdate(cfg)

	m.watcher.Start(m)
	return nil
}

// GetConfig reads the current file contents.
func (m *FileManager) GetConfig() (Config, error) {
	return m.ReadConfig(m.path, m.log)
}

// Shutdown stops the file watcher.
func (m *FileManager) Shutdown() {
	m.watcher.Shutdown()
}

// WatcherItemDidChange implements watcher.Notification.
func (m *FileManager) WatcherItemDidChange(path string) {
	m.log.Debug().Str("path", path).Msg("config file changed")
	cfg, err := m.GetConfig()
	if err != nil {
		m.log.Err(err).Msg("failed to re-read config file, keeping previous configuration")
		return
	}
	m.notifier.ConfigDidUpdate(cfg)
}

// WatcherDidError implements watcher.Notification.
func (m *FileManager) WatcherDidError(err error) {
	m.log.Err(err).Msg("config watcher error")
}
