package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	if err := c.normalizeHardware(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DatabasePath, err = databaseFilePath(orDefault(c.Paths.DatabasePath, defaultDatabasePath)); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if c.Paths.UploadsRoot, err = expandPath(orDefault(c.Paths.UploadsRoot, defaultUploadsRoot)); err != nil {
		return fmt.Errorf("paths.uploads_root: %w", err)
	}
	if c.Paths.TmpRoot, err = expandPath(orDefault(c.Paths.TmpRoot, defaultTmpRoot)); err != nil {
		return fmt.Errorf("paths.tmp_root: %w", err)
	}
	if c.Paths.LockDir, err = expandPath(orDefault(c.Paths.LockDir, defaultLockDir)); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(orDefault(c.Paths.LogDir, defaultLogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = orDefault(c.Paths.APIBind, defaultAPIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeIngest() {
	exts := make([]string, 0, len(c.Ingest.AllowedExtensions))
	seen := make(map[string]struct{}, len(c.Ingest.AllowedExtensions))
	for _, ext := range c.Ingest.AllowedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{".pdf"}
	}
	c.Ingest.AllowedExtensions = exts

	fold := cases.Fold()
	cols := make([]string, 0, len(c.Ingest.ManifestRequiredColumns))
	for _, col := range c.Ingest.ManifestRequiredColumns {
		if trimmed := strings.TrimSpace(col); trimmed != "" {
			cols = append(cols, fold.String(trimmed))
		}
	}
	c.Ingest.ManifestRequiredColumns = cols

	c.Ingest.SourceLabel = orDefault(c.Ingest.SourceLabel, defaultSourceLabel)
	if c.Ingest.MaxUploadBytes <= 0 {
		c.Ingest.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Ingest.MaxExtractedBytes <= 0 {
		c.Ingest.MaxExtractedBytes = defaultMaxExtractedBytes
	}
	if c.Ingest.StaleScratchHours <= 0 {
		c.Ingest.StaleScratchHours = defaultStaleScratchHours
	}
}

func (c *Config) normalizeHardware() error {
	c.Hardware.Mode = strings.ToLower(orDefault(c.Hardware.Mode, defaultHardwareMode))
	var err error
	if c.Hardware.SysfsRoot, err = expandPath(orDefault(c.Hardware.SysfsRoot, defaultSysfsRoot)); err != nil {
		return fmt.Errorf("hardware.sysfs_root: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(orDefault(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(orDefault(c.Logging.Level, defaultLogLevel))
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
