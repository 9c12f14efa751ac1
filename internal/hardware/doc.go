// Package hardware pulses the relay that unlatches a shelf.
//
// A Trigger drives one GPIO pin high for the configured pulse and then low
// again. SysfsDriver talks to the legacy /sys/class/gpio interface; MockDriver
// only sleeps and is used on development machines and in tests. Select picks
// one of them at startup from the hardware section of the configuration.
//
// PinLocker serializes pulses per pin with lock files so two requests, even
// from separate processes, never toggle the same relay at the same time.
package hardware
