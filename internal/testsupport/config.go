package testsupport

import (
	"path/filepath"
	"testing"

	"smartshelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Hardware runs in mock mode with a 1ms pulse so handler tests stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DatabasePath = filepath.Join(base, "data", "smartshelf.db")
	cfgVal.Paths.UploadsRoot = filepath.Join(base, "uploads", "documents")
	cfgVal.Paths.TmpRoot = filepath.Join(base, "tmp")
	cfgVal.Paths.LockDir = filepath.Join(base, "locks")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Hardware.Mode = "mock"
	cfgVal.Hardware.PulseMS = 1
	cfgVal.Hardware.SysfsRoot = filepath.Join(base, "gpio")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIToken sets the bearer token required by the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithPDFValidation toggles pdfcpu content validation during ingest.
func WithPDFValidation(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.ValidatePDFContent = enabled
	}
}

// WithMaxExtractedBytes overrides the uncompressed archive cap.
func WithMaxExtractedBytes(limit int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.MaxExtractedBytes = limit
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TmpRoot)
}
