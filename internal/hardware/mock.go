package hardware

import (
	"context"
	"log/slog"
	"time"

	"smartshelf/internal/logging"
)

// MockDriver simulates a relay pulse by sleeping.
type MockDriver struct {
	pulse  time.Duration
	logger *slog.Logger
}

// NewMockDriver returns a driver that touches no hardware.
func NewMockDriver(pulse time.Duration, logger *slog.Logger) *MockDriver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MockDriver{pulse: pulse, logger: logger}
}

// Trigger waits for the pulse duration and reports success.
func (m *MockDriver) Trigger(ctx context.Context, pin int) (Result, error) {
	timer := time.NewTimer(m.pulse)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return Result{Pin: pin, Message: "pulse interrupted"}, ctx.Err()
	}
	m.logger.Info("mock shelf trigger", logging.Pin(pin), logging.Duration("pulse", m.pulse))
	return Result{Pin: pin, Triggered: true, Message: MockMessage}, nil
}

// Close is a no-op.
func (m *MockDriver) Close() error { return nil }
