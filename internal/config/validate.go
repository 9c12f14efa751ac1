package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateHardware(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateIngest() error {
	if len(c.Ingest.ManifestRequiredColumns) != 3 {
		return fmt.Errorf("ingest.manifest_required_columns must list exactly three columns (filename, title, shelf), got %d", len(c.Ingest.ManifestRequiredColumns))
	}
	seen := make(map[string]struct{}, 3)
	for _, col := range c.Ingest.ManifestRequiredColumns {
		if _, dup := seen[col]; dup {
			return fmt.Errorf("ingest.manifest_required_columns contains %q twice", col)
		}
		seen[col] = struct{}{}
	}
	if c.Ingest.SourceLabel == "" {
		return errors.New("ingest.source_label must be set")
	}
	return nil
}

func (c *Config) validateHardware() error {
	switch c.Hardware.Mode {
	case "auto", "gpio", "mock":
	default:
		return fmt.Errorf("hardware.mode: unsupported value %q (want auto, gpio or mock)", c.Hardware.Mode)
	}
	if c.Hardware.PulseMS <= 0 {
		return errors.New("hardware.pulse_ms must be positive")
	}
	if c.Hardware.PulseMS > 10000 {
		return errors.New("hardware.pulse_ms must not exceed 10000")
	}
	if c.Hardware.ChipBase < 0 {
		return errors.New("hardware.chip_base must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
