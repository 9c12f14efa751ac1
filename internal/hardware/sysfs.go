package hardware

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"smartshelf/internal/logging"
	"smartshelf/internal/services"
)

const (
	defaultExportWait = time.Second
	exportPollDelay   = 10 * time.Millisecond
)

// SysfsDriver drives pins through the legacy sysfs GPIO interface.
type SysfsDriver struct {
	root     string
	chipBase int
	pulse    time.Duration
	logger   *slog.Logger

	// exportWait bounds how long to wait for udev to create gpioN after export.
	exportWait time.Duration

	mu       sync.Mutex
	exported map[int]struct{}
}

// NewSysfsDriver returns a driver rooted at root (normally /sys/class/gpio).
// chipBase is added to every pin number before it is written to sysfs.
func NewSysfsDriver(root string, chipBase int, pulse time.Duration, logger *slog.Logger) *SysfsDriver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SysfsDriver{
		root:       root,
		chipBase:   chipBase,
		pulse:      pulse,
		logger:     logger,
		exportWait: defaultExportWait,
		exported:   make(map[int]struct{}),
	}
}

// Trigger exports the pin if needed, configures it as an output and drives it
// high for the pulse duration. The pin is written low again on every path
// once it has been driven high.
func (d *SysfsDriver) Trigger(ctx context.Context, pin int) (Result, error) {
	line := pin + d.chipBase
	result := Result{Pin: pin}

	fail := func(op string, err error) (Result, error) {
		wrapped := services.Wrap(services.ErrHardware, "hardware", op, fmt.Sprintf("gpio %d", line), err)
		result.Message = wrapped.Error()
		d.logger.Error("shelf trigger failed",
			logging.Pin(pin),
			logging.Int("gpio_line", line),
			logging.String("operation", op),
			logging.Error(err),
			logging.String(logging.FieldEventType, "shelf_trigger_failed"),
			logging.String(logging.FieldErrorHint, "check relay wiring and gpio group permissions"),
		)
		return result, wrapped
	}

	if err := d.export(ctx, line); err != nil {
		return fail("export", err)
	}
	if err := d.write(line, "direction", "out"); err != nil {
		return fail("direction", err)
	}
	if err := d.write(line, "value", "1"); err != nil {
		return fail("drive high", err)
	}

	timer := time.NewTimer(d.pulse)
	var waitErr error
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		waitErr = ctx.Err()
	}

	if err := d.write(line, "value", "0"); err != nil {
		return fail("drive low", err)
	}
	if waitErr != nil {
		result.Message = "pulse interrupted"
		return result, waitErr
	}

	result.Triggered = true
	result.Message = fmt.Sprintf("GPIO %d pulsed for %s", pin, d.pulse)
	d.logger.Info("shelf trigger pulsed",
		logging.Pin(pin),
		logging.Int("gpio_line", line),
		logging.Duration("pulse", d.pulse),
	)
	return result, nil
}

// Close unexports every pin this driver exported.
func (d *SysfsDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for line := range d.exported {
		path := filepath.Join(d.root, "unexport")
		if err := os.WriteFile(path, []byte(strconv.Itoa(line)), 0); err != nil {
			errs = append(errs, fmt.Errorf("unexport gpio %d: %w", line, err))
		}
		delete(d.exported, line)
	}
	return errors.Join(errs...)
}

func (d *SysfsDriver) pinDir(line int) string {
	return filepath.Join(d.root, "gpio"+strconv.Itoa(line))
}

func (d *SysfsDriver) export(ctx context.Context, line int) error {
	if _, err := os.Stat(d.pinDir(line)); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(filepath.Join(d.root, "export"), []byte(strconv.Itoa(line)), 0); err != nil {
		return err
	}
	d.mu.Lock()
	d.exported[line] = struct{}{}
	d.mu.Unlock()

	// The kernel creates gpioN immediately but udev may still be fixing
	// permissions on the attribute files.
	deadline := time.Now().Add(d.exportWait)
	direction := filepath.Join(d.pinDir(line), "direction")
	for {
		if f, err := os.OpenFile(direction, os.O_WRONLY, 0); err == nil {
			return f.Close()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s not writable after export", direction)
		}
		select {
		case <-time.After(exportPollDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *SysfsDriver) write(line int, attr, value string) error {
	return os.WriteFile(filepath.Join(d.pinDir(line), attr), []byte(value), 0)
}
