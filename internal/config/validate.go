package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePreview() error {
	if c.Preview.ResolvingPower <= 0 {
		return errors.New("preview.resolving_power must be positive")
	}
	if c.Preview.SamplingDensity <= 0 {
		return errors.New("preview.sampling_density must be positive")
	}
	if _, err := c.Pools(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.TopN < 0 {
		return errors.New("export.top_n must be >= 0")
	}
	if c.Export.Cutoff < 0 || c.Export.Cutoff > 100 {
		return errors.New("export.cutoff must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
