package config

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ReadConfigFile loads and parses the YAML configuration at path.
func ReadConfigFile(path string, log *zerolog.Logger) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "cannot read config file %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "cannot parse config file %s", path)
	}
	log.Debug().Str("path", path).Int("accounts", len(cfg.Accounts)).Msg("configuration loaded")
	return cfg, nil
}
