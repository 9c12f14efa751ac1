package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"smartshelf/internal/config"
	"smartshelf/internal/logging"
)

// Driver modes accepted in hardware.mode.
const (
	ModeAuto = "auto"
	ModeGPIO = "gpio"
	ModeMock = "mock"
)

// MockMessage is reported by MockDriver for every successful pulse.
const MockMessage = "Mock trigger executed"

// Result describes the outcome of one pulse.
type Result struct {
	Pin       int    `json:"gpio_pin"`
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Trigger pulses a relay pin. Implementations must always return the pin to
// its idle level before returning, including when ctx is cancelled mid-pulse.
type Trigger interface {
	Trigger(ctx context.Context, pin int) (Result, error)
	Close() error
}

// Select builds the driver named by cfg.Hardware.Mode. In auto mode the sysfs
// driver is chosen when the export file under sysfs_root is writable by this
// process, and the mock driver otherwise.
func Select(cfg *config.Config, logger *slog.Logger) (Trigger, error) {
	logger = logging.NewComponentLogger(logger, "hardware")
	pulse := time.Duration(cfg.Hardware.PulseMS) * time.Millisecond

	mode := cfg.Hardware.Mode
	if mode == "" || mode == ModeAuto {
		mode = ModeMock
		if GPIOAvailable(cfg.Hardware.SysfsRoot) {
			mode = ModeGPIO
		}
		logger.Info("hardware driver auto-selected",
			logging.String("mode", mode),
			logging.String("sysfs_root", cfg.Hardware.SysfsRoot),
		)
	}

	switch mode {
	case ModeGPIO:
		return NewSysfsDriver(cfg.Hardware.SysfsRoot, cfg.Hardware.ChipBase, pulse, logger), nil
	case ModeMock:
		return NewMockDriver(pulse, logger), nil
	default:
		return nil, fmt.Errorf("unsupported hardware mode %q", cfg.Hardware.Mode)
	}
}

// GPIOAvailable reports whether the sysfs GPIO export file can be written.
func GPIOAvailable(sysfsRoot string) bool {
	if sysfsRoot == "" {
		return false
	}
	return unix.Access(filepath.Join(sysfsRoot, "export"), unix.W_OK) == nil
}
