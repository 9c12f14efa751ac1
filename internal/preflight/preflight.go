package preflight

import (
	"path/filepath"

	"smartshelf/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Database directory", filepath.Dir(cfg.Paths.DatabasePath)),
		CheckDirectoryAccess("Uploads root", cfg.Paths.UploadsRoot),
		CheckDirectoryAccess("Scratch root", cfg.Paths.TmpRoot),
		CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir),
	}
	results = append(results, CheckSameFilesystem("Scratch to uploads move", cfg.Paths.TmpRoot, cfg.Paths.UploadsRoot))
	results = append(results, CheckGPIO(cfg.Hardware.Mode, cfg.Hardware.SysfsRoot))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
