// Package gpio provides the relay output line with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Output drives a single GPIO output line (the relay coil input).
type Output interface {
	// Set drives the line to the given logical state.
	// true = relay energized (lamp on), false = relay released.
	Set(on bool) error

	// Close forces the line Off and releases GPIO resources.
	Close() error
}

// DefaultPin is the BCM pin number the relay module is wired to
// (GPIO17, physical pin 11).
const DefaultPin = 17
