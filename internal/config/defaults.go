package config

const (
	defaultDatabasePath      = "~/.local/share/smartshelf/smartshelf.db"
	defaultUploadsRoot       = "~/.local/share/smartshelf/uploads/documents"
	defaultTmpRoot           = "~/.local/share/smartshelf/tmp"
	defaultLockDir           = "~/.local/share/smartshelf/locks"
	defaultLogDir            = "~/.local/share/smartshelf/logs"
	defaultAPIBind           = "127.0.0.1:8088"
	defaultSourceLabel       = "bulk_zip_ingest"
	defaultFilenameColumn    = "filename"
	defaultTitleColumn       = "document_title"
	defaultShelfColumn       = "shelf_id"
	defaultMaxUploadBytes    = 512 << 20
	defaultMaxExtractedBytes = 2 << 30
	defaultStaleScratchHours = 24
	defaultHardwareMode      = "auto"
	defaultPulseMS           = 500
	defaultSysfsRoot         = "/sys/class/gpio"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatabasePath: defaultDatabasePath,
			UploadsRoot:  defaultUploadsRoot,
			TmpRoot:      defaultTmpRoot,
			LockDir:      defaultLockDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Ingest: Ingest{
			AllowedExtensions:       []string{".pdf"},
			ManifestRequiredColumns: []string{defaultFilenameColumn, defaultTitleColumn, defaultShelfColumn},
			SourceLabel:             defaultSourceLabel,
			MaxUploadBytes:          defaultMaxUploadBytes,
			MaxExtractedBytes:       defaultMaxExtractedBytes,
			StaleScratchHours:       defaultStaleScratchHours,
		},
		Hardware: Hardware{
			Mode:      defaultHardwareMode,
			PulseMS:   defaultPulseMS,
			SysfsRoot: defaultSysfsRoot,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
