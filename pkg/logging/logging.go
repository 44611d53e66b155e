// Package logging routes the standard logger to rotating files and wires
// Sentry error reporting.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wadjakorntonsri/deeplinker/pkg/config"
)

// Setup configures the process wide logger and Sentry. The returned func
// flushes pending events and closes the log file.
func Setup(cfg *config.Config) (func(), error) {
	var closers []func()

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), os.ModePerm); err != nil {
			return nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotating))
		closers = append(closers, func() {
			log.SetOutput(os.Stderr)
			_ = rotating.Close()
		})
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.AppEnv,
			TracesSampleRate: 0.2,
		})
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { sentry.Flush(2 * time.Second) })
		log.Printf("Sentry enabled for %s", cfg.AppEnv)
	}

	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
