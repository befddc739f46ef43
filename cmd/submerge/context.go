package main

import (
	"log/slog"
	"strings"
	"sync"

	"submerge/internal/config"
	"submerge/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the logger the configuration asks for. Verbose forces the
// debug level.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if cfg.Logging.Verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
	})
}
