package relay

import "time"

// Defaults for the flash pattern, used when a caller omits or supplies
// out-of-range parameters.
const (
	DefaultDuration = 8 * time.Second
	DefaultFlashes  = 8
)

// Pattern describes one symmetric on/off flash sequence.
type Pattern struct {
	// Duration is the wall-clock span the entire sequence occupies.
	Duration time.Duration

	// Flashes is the number of on/off cycles within Duration.
	Flashes int
}

// DefaultPattern returns the pattern used when a caller supplies no
// parameters at all.
func DefaultPattern() Pattern {
	return Pattern{Duration: DefaultDuration, Flashes: DefaultFlashes}
}

// Normalized coerces out-of-range parameters to valid values and reports
// whether anything was adjusted. Flashes < 1 becomes 1; Duration <= 0
// becomes DefaultDuration. Invalid input is never rejected: callers get a
// valid pattern and can detect the substitution from the returned flag and
// the values echoed in the result.
func (p Pattern) Normalized() (Pattern, bool) {
	adjusted := false
	if p.Flashes < 1 {
		p.Flashes = 1
		adjusted = true
	}
	if p.Duration <= 0 {
		p.Duration = DefaultDuration
		adjusted = true
	}
	return p, adjusted
}

// HalfCycle returns the on-time (and equally the off-time) per cycle.
// It is computed once per activation and reused for every interval so the
// schedule does not drift from repeated derivation.
func (p Pattern) HalfCycle() time.Duration {
	return p.Duration / time.Duration(2*p.Flashes)
}

// Result reports a flash pattern that ran to completion.
type Result struct {
	// Duration and Flashes echo the normalized pattern that actually ran.
	Duration time.Duration
	Flashes  int
}
