package relay

import (
	"testing"
	"time"
)

func TestHalfCycle(t *testing.T) {
	cases := []struct {
		duration time.Duration
		flashes  int
		want     time.Duration
	}{
		{4 * time.Second, 2, 1 * time.Second},
		{8 * time.Second, 1, 4 * time.Second},
		{8 * time.Second, 8, 500 * time.Millisecond},
		{1 * time.Second, 5, 100 * time.Millisecond},
	}
	for _, c := range cases {
		p := Pattern{Duration: c.duration, Flashes: c.flashes}
		if got := p.HalfCycle(); got != c.want {
			t.Errorf("HalfCycle(%v, %d): got %v, want %v", c.duration, c.flashes, got, c.want)
		}
	}
}

func TestNormalizedValidPatternUnchanged(t *testing.T) {
	p := Pattern{Duration: 4 * time.Second, Flashes: 2}
	got, adjusted := p.Normalized()
	if adjusted {
		t.Error("valid pattern should not be adjusted")
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}

func TestNormalizedCoercesFlashes(t *testing.T) {
	for _, flashes := range []int{0, -1, -100} {
		p := Pattern{Duration: 8 * time.Second, Flashes: flashes}
		got, adjusted := p.Normalized()
		if !adjusted {
			t.Errorf("flashes=%d: expected adjustment", flashes)
		}
		if got.Flashes != 1 {
			t.Errorf("flashes=%d: got %d, want 1", flashes, got.Flashes)
		}
		if got.Duration != 8*time.Second {
			t.Errorf("flashes=%d: duration should be untouched, got %v", flashes, got.Duration)
		}
		// The normalized pattern still describes a valid completing
		// sequence: one flash, half-cycle of half the duration.
		if got.HalfCycle() != 4*time.Second {
			t.Errorf("flashes=%d: half cycle got %v, want 4s", flashes, got.HalfCycle())
		}
	}
}

func TestNormalizedCoercesDuration(t *testing.T) {
	p := Pattern{Duration: 0, Flashes: 2}
	got, adjusted := p.Normalized()
	if !adjusted {
		t.Error("expected adjustment for zero duration")
	}
	if got.Duration != DefaultDuration {
		t.Errorf("duration: got %v, want %v", got.Duration, DefaultDuration)
	}
	if got.Flashes != 2 {
		t.Errorf("flashes should be untouched, got %d", got.Flashes)
	}
}

func TestDefaultPattern(t *testing.T) {
	p := DefaultPattern()
	if p.Duration != 8*time.Second || p.Flashes != 8 {
		t.Errorf("got %+v, want 8s/8", p)
	}
	if _, adjusted := p.Normalized(); adjusted {
		t.Error("default pattern should be valid as-is")
	}
}
