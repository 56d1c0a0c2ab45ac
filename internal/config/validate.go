package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArxiv(); err != nil {
		return err
	}
	if err := c.validatePandoc(); err != nil {
		return err
	}
	if err := c.validateCover(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.TempDir == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if c.Paths.OutputDir == c.Paths.TempDir {
		return errors.New("paths.output_dir and paths.temp_dir must differ")
	}
	return nil
}

func (c *Config) validateArxiv() error {
	for key, value := range map[string]string{
		"arxiv.eprint_base_url": c.Arxiv.EPrintBaseURL,
		"arxiv.api_base_url":    c.Arxiv.APIBaseURL,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", key)
		}
	}
	if c.Arxiv.RequestTimeout <= 0 {
		return errors.New("arxiv.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePandoc() error {
	if c.Pandoc.Binary == "" {
		return errors.New("pandoc.binary must be set")
	}
	if c.Pandoc.Timeout <= 0 {
		return errors.New("pandoc.timeout must be positive")
	}
	return nil
}

func (c *Config) validateCover() error {
	if !c.Cover.Enabled {
		return nil
	}
	if c.Cover.MagickBinary == "" {
		return errors.New("cover.magick_binary must be set when cover.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
