package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"smartshelf/internal/hardware"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSameFilesystem reports whether relocation from src to dst can use an
// atomic rename. Separate filesystems still work through a verified copy, so
// only a stat failure fails the check.
func CheckSameFilesystem(name, src, dst string) Result {
	var srcStat, dstStat unix.Stat_t
	if err := unix.Stat(src, &srcStat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", src, err)}
	}
	if err := unix.Stat(dst, &dstStat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("stat %s: %v", dst, err)}
	}
	if srcStat.Dev == dstStat.Dev {
		return Result{Name: name, Passed: true, Detail: "same filesystem (atomic rename)"}
	}
	return Result{Name: name, Passed: true, Detail: "different filesystems (copy fallback)"}
}

// CheckGPIO verifies the configured relay driver can run. Mock mode always
// passes; gpio mode requires a writable sysfs export file; auto reports which
// driver will be chosen.
func CheckGPIO(mode, sysfsRoot string) Result {
	const name = "Relay driver"

	available := hardware.GPIOAvailable(sysfsRoot)
	switch mode {
	case hardware.ModeMock:
		return Result{Name: name, Passed: true, Detail: "mock driver"}
	case hardware.ModeGPIO:
		if !available {
			return Result{Name: name, Detail: fmt.Sprintf("%s/export not writable (add the service user to the gpio group)", sysfsRoot)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("sysfs GPIO at %s", sysfsRoot)}
	default:
		if available {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("auto: sysfs GPIO at %s", sysfsRoot)}
		}
		return Result{Name: name, Passed: true, Detail: "auto: sysfs GPIO unavailable, using mock driver"}
	}
}
