package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jxo-me/cfddns/config"
)

func logFromConfig(cfg *config.LogConfig) *zerolog.Logger {
	if cfg == nil {
		cfg = &config.LogConfig{}
	}

	var out io.Writer = os.Stderr
	switch cfg.Output {
	case "none", "null":
		logger := zerolog.Nop()
		return &logger
	case "stdout":
		out = os.Stdout
	case "stderr", "":
		out = os.Stderr
	default:
		if cfg.Rotation != nil {
			out = &lumberjack.Logger{
				Filename:   cfg.Output,
				MaxSize:    cfg.Rotation.MaxSize,
				MaxAge:     cfg.Rotation.MaxAge,
				MaxBackups: cfg.Rotation.MaxBackups,
				LocalTime:  cfg.Rotation.LocalTime,
				Compress:   cfg.Rotation.Compress,
			}
		} else {
			_ = os.MkdirAll(filepath.Dir(cfg.Output), 0o755)
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
			if err == nil {
				out = f
			}
		}
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &logger
}
