package main

import (
	"log/slog"
	"strings"
	"sync"

	"arxiv2epub/internal/config"
	"arxiv2epub/internal/logging"
)

type commandContext struct {
	configFlag *string

	outputDirFlag string
	tempDirFlag   string
	mainFileFlag  string
	keepTempFlag  bool
	verboseFlag   bool

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
		if err := c.applyFlagOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// Flags win over the configuration file.
func (c *commandContext) applyFlagOverrides(cfg *config.Config) error {
	if dir := strings.TrimSpace(c.outputDirFlag); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return err
		}
		cfg.Paths.OutputDir = expanded
	}
	if dir := strings.TrimSpace(c.tempDirFlag); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return err
		}
		cfg.Paths.TempDir = expanded
	}
	if c.verboseFlag {
		cfg.Logging.Level = "debug"
	}
	return cfg.Validate()
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}
