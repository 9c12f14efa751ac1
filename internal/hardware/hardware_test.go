package hardware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"smartshelf/internal/logging"
	"smartshelf/internal/services"
	"smartshelf/internal/testsupport"
)

func fakePin(t *testing.T, root string, line int) string {
	t.Helper()
	dir := filepath.Join(root, "gpio"+strconv.Itoa(line))
	testsupport.WriteFile(t, filepath.Join(dir, "direction"), []byte("in"))
	testsupport.WriteFile(t, filepath.Join(dir, "value"), []byte("0"))
	return dir
}

func readAttr(t *testing.T, dir, attr string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		t.Fatalf("read %s: %v", attr, err)
	}
	return strings.TrimSpace(string(data))
}

func TestSysfsDriverPulsesExportedPin(t *testing.T) {
	root := t.TempDir()
	dir := fakePin(t, root, 17)

	driver := NewSysfsDriver(root, 0, time.Millisecond, logging.NewNop())
	result, err := driver.Trigger(context.Background(), 17)
	if err != nil {
		t.Fatalf("Trigger returned error: %v", err)
	}
	if !result.Triggered || result.Pin != 17 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := readAttr(t, dir, "direction"); got != "out" {
		t.Fatalf("direction = %q, want out", got)
	}
	if got := readAttr(t, dir, "value"); got != "0" {
		t.Fatalf("value = %q, want 0 after pulse", got)
	}
}

func TestSysfsDriverAppliesChipBase(t *testing.T) {
	root := t.TempDir()
	dir := fakePin(t, root, 529)

	driver := NewSysfsDriver(root, 512, time.Millisecond, logging.NewNop())
	result, err := driver.Trigger(context.Background(), 17)
	if err != nil {
		t.Fatalf("Trigger returned error: %v", err)
	}
	if result.Pin != 17 {
		t.Fatalf("expected logical pin in result, got %d", result.Pin)
	}
	if got := readAttr(t, dir, "direction"); got != "out" {
		t.Fatalf("direction = %q, want out", got)
	}
}

func TestSysfsDriverReleasesPinOnCancel(t *testing.T) {
	root := t.TempDir()
	dir := fakePin(t, root, 4)

	driver := NewSysfsDriver(root, 0, time.Hour, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	result, err := driver.Trigger(ctx, 4)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Triggered {
		t.Fatal("interrupted pulse must not report triggered")
	}
	if got := readAttr(t, dir, "value"); got != "0" {
		t.Fatalf("value = %q, want 0 after cancel", got)
	}
}

func TestSysfsDriverExportFailureIsHardwareError(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "export"), nil)

	driver := NewSysfsDriver(root, 0, time.Millisecond, logging.NewNop())
	driver.exportWait = 20 * time.Millisecond
	result, err := driver.Trigger(context.Background(), 22)
	if err == nil {
		t.Fatal("expected error when gpio directory never appears")
	}
	if result.Triggered || result.Message == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if services.HTTPStatus(err) != http.StatusBadGateway {
		t.Fatalf("expected 502 mapping, got %d", services.HTTPStatus(err))
	}
	if got := readAttr(t, root, "export"); got != "22" {
		t.Fatalf("export = %q, want 22", got)
	}
}

func TestMockDriver(t *testing.T) {
	driver := NewMockDriver(time.Millisecond, nil)
	result, err := driver.Trigger(context.Background(), 9)
	if err != nil {
		t.Fatalf("Trigger returned error: %v", err)
	}
	want := Result{Pin: 9, Triggered: true, Message: MockMessage}
	if result != want {
		t.Fatalf("result = %+v, want %+v", result, want)
	}
}

func TestSelect(t *testing.T) {
	cases := []struct {
		name       string
		mode       string
		withExport bool
		wantSysfs  bool
	}{
		{name: "explicit mock", mode: ModeMock, withExport: true},
		{name: "explicit gpio", mode: ModeGPIO, wantSysfs: true},
		{name: "auto with export", mode: ModeAuto, withExport: true, wantSysfs: true},
		{name: "auto without export", mode: ModeAuto},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			cfg.Hardware.Mode = tc.mode
			if tc.withExport {
				testsupport.WriteFile(t, filepath.Join(cfg.Hardware.SysfsRoot, "export"), nil)
			}
			trigger, err := Select(cfg, logging.NewNop())
			if err != nil {
				t.Fatalf("Select returned error: %v", err)
			}
			_, isSysfs := trigger.(*SysfsDriver)
			if isSysfs != tc.wantSysfs {
				t.Fatalf("got %T, want sysfs=%v", trigger, tc.wantSysfs)
			}
		})
	}

	cfg := testsupport.NewConfig(t)
	cfg.Hardware.Mode = "relay-board"
	if _, err := Select(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestPinLockerSerializesSamePin(t *testing.T) {
	locker := NewPinLocker(t.TempDir())

	unlock, err := locker.Lock(context.Background(), 17)
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, 17); err == nil {
		t.Fatal("expected second lock on the same pin to wait until timeout")
	}

	other, err := locker.Lock(context.Background(), 18)
	if err != nil {
		t.Fatalf("lock on a different pin should succeed: %v", err)
	}
	other()

	unlock()
	again, err := locker.Lock(context.Background(), 17)
	if err != nil {
		t.Fatalf("Lock after release returned error: %v", err)
	}
	again()
}

func TestSerializedDelegates(t *testing.T) {
	trigger := NewSerialized(NewMockDriver(time.Millisecond, nil), NewPinLocker(t.TempDir()))
	defer trigger.Close()

	result, err := trigger.Trigger(context.Background(), 5)
	if err != nil || !result.Triggered {
		t.Fatalf("unexpected result %+v err %v", result, err)
	}
}
