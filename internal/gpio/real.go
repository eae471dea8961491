//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealOutput drives a relay through an actual GPIO line using the Linux
// GPIO character device.
type RealOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	// activeLow inverts the raw line value. Most cheap relay boards
	// energize on a low input; with activeLow set, logical On drives
	// the raw line to 0.
	activeLow bool
}

// NewRealOutput requests the given BCM pin as an output, driven to the
// logical Off state. The relay must never energize as a side effect of
// startup.
func NewRealOutput(pin int, activeLow bool) (*RealOutput, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	out := &RealOutput{chip: chip, activeLow: activeLow}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(out.raw(false)))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
	}
	out.line = line

	return out, nil
}

// Set drives the line to the given logical state.
func (o *RealOutput) Set(on bool) error {
	if err := o.line.SetValue(o.raw(on)); err != nil {
		return fmt.Errorf("set relay pin: %w", err)
	}
	return nil
}

// Close drives the line to logical Off and releases GPIO resources.
// The line keeps its last driven value after release, so the relay stays
// de-energized across a daemon restart.
func (o *RealOutput) Close() error {
	var errs []error

	if o.line != nil {
		if err := o.line.SetValue(o.raw(false)); err != nil {
			errs = append(errs, fmt.Errorf("drive relay pin off: %w", err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay pin: %w", err))
		}
	}
	if o.chip != nil {
		if err := o.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// raw converts a logical state to the raw line value, applying active-low
// inversion.
func (o *RealOutput) raw(on bool) int {
	if on != o.activeLow {
		return 1
	}
	return 0
}
