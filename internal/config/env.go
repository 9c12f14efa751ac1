package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// envPrefix namespaces every environment override.
const envPrefix = "BULK_"

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (c *Config) applyEnv() error {
	if value, ok := lookupEnv("DATABASE_URL"); ok {
		c.Paths.DatabasePath = value
	}
	if value, ok := lookupEnv("DATABASE_PATH"); ok {
		c.Paths.DatabasePath = value
	}
	if value, ok := lookupEnv("UPLOADS_ROOT"); ok {
		c.Paths.UploadsRoot = value
	}
	if value, ok := lookupEnv("TMP_ROOT"); ok {
		c.Paths.TmpRoot = value
	}
	if value, ok := lookupEnv("LOCK_DIR"); ok {
		c.Paths.LockDir = value
	}
	if value, ok := lookupEnv("LOG_DIR"); ok {
		c.Paths.LogDir = value
	}
	if value, ok := lookupEnv("API_BIND"); ok {
		c.Paths.APIBind = value
	}
	if value, ok := lookupEnv("API_TOKEN"); ok {
		c.Paths.APIToken = value
	}
	if value, ok := lookupEnv("ALLOWED_EXTENSIONS"); ok {
		c.Ingest.AllowedExtensions = splitList(value)
	}
	if value, ok := lookupEnv("MANIFEST_REQUIRED_COLUMNS"); ok {
		c.Ingest.ManifestRequiredColumns = splitList(value)
	}
	if value, ok := lookupEnv("INGEST_SOURCE_LABEL"); ok {
		c.Ingest.SourceLabel = value
	}
	if value, ok := lookupEnv("VALIDATE_PDF_CONTENT"); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%sVALIDATE_PDF_CONTENT: %w", envPrefix, err)
		}
		c.Ingest.ValidatePDFContent = parsed
	}
	if value, ok := lookupEnv("GPIO_PULSE_MS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%sGPIO_PULSE_MS: %w", envPrefix, err)
		}
		c.Hardware.PulseMS = parsed
	}
	if value, ok := lookupEnv("HARDWARE_MODE"); ok {
		c.Hardware.Mode = value
	}
	if value, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupEnv("LOG_FORMAT"); ok {
		c.Logging.Format = value
	}
	return nil
}

// splitList accepts comma separated values as well as the JSON-ish
// ["a","b"] form used by the original deployment's .env files.
func splitList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
