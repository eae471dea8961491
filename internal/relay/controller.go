// Package relay implements the relay controller: the single owner of the
// lamp output. All writes to the GPIO line serialize through it, and at
// most one pattern execution drives the line at any instant. A new request
// preempts the running one at the next half-cycle boundary.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jverbist/S1-hyperautomation/internal/gpio"
	"github.com/Jverbist/S1-hyperautomation/internal/logging"
)

// Sentinel errors returned by controller operations.
var (
	// ErrSuperseded is returned to a caller whose in-flight operation was
	// preempted by a later request. The preempted pattern never ran to
	// completion; the superseding request owns the output from then on.
	ErrSuperseded = errors.New("relay: superseded by a later request")

	// ErrClosed is returned once the controller has shut down.
	ErrClosed = errors.New("relay: controller closed")
)

// run represents one execution holding exclusive ownership of the output.
// Creating a successor invalidates the current run via supersede.
type run struct {
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	superseded atomic.Bool
}

// supersede cancels the run and marks it as preempted rather than failed.
func (r *run) supersede() {
	r.superseded.Store(true)
	r.cancel()
}

// Controller owns the lamp output and serializes all writes to it.
type Controller struct {
	out    gpio.Output
	log    *logging.Logger
	notify func(Event)

	mu     sync.Mutex
	active *run
	closed bool
}

// New creates a Controller owning the given output. The output must be in
// the Off state; the controller does not touch it until the first request.
func New(out gpio.Output, log *logging.Logger) *Controller {
	return &Controller{out: out, log: log}
}

// SetNotify registers a callback invoked on every lamp state transition.
// The callback runs on the execution goroutine and must not block.
func (c *Controller) SetNotify(fn func(Event)) {
	c.notify = fn
}

// Flash drives the output through the given pattern: Flashes cycles of
// (On, Off), each phase lasting HalfCycle, starting with On. It blocks
// until the pattern completes, the context is canceled, or a later request
// preempts it. On completion the output is Off and the normalized pattern
// is reported back.
func (c *Controller) Flash(ctx context.Context, p Pattern) (Result, error) {
	p, adjusted := p.Normalized()
	if adjusted {
		// Tolerant coercion: invalid parameters are substituted, not
		// rejected. Logged so a misbehaving caller is at least visible.
		c.log.Warn("pattern parameters out of range, normalized",
			"duration", p.Duration,
			"flashes", p.Flashes,
		)
	}

	r, err := c.begin(ctx)
	if err != nil {
		return Result{}, err
	}

	half := p.HalfCycle()
	c.log.Info("flash started",
		"duration", p.Duration,
		"flashes", p.Flashes,
		"half_cycle", half,
	)
	c.emit(Event{Timestamp: time.Now(), Type: EventFlashStart, Pattern: &p})

	var runErr error
	for i := 0; i < p.Flashes && runErr == nil; i++ {
		runErr = c.phase(r, true, half)
		if runErr == nil {
			runErr = c.phase(r, false, half)
		}
	}

	if runErr != nil {
		return Result{}, c.abort(r, runErr)
	}

	c.emit(Event{Timestamp: time.Now(), Type: EventFlashDone, Pattern: &p})
	c.finish(r)
	c.log.Info("flash completed", "flashes", p.Flashes)
	return Result{Duration: p.Duration, Flashes: p.Flashes}, nil
}

// On preempts any running pattern and leaves the output steadily energized.
func (c *Controller) On(ctx context.Context) error {
	r, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer c.finish(r)

	if err := c.out.Set(true); err != nil {
		return fmt.Errorf("drive output on: %w", err)
	}
	c.emit(Event{Timestamp: time.Now(), Type: EventLampOn})
	c.log.Info("lamp on")
	return nil
}

// Off preempts any running pattern and forces the output Off. It is
// idempotent and completes within at most one half-cycle of latency even
// when a long pattern is mid-flight.
func (c *Controller) Off(ctx context.Context) error {
	r, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer c.finish(r)

	if err := c.out.Set(false); err != nil {
		return fmt.Errorf("drive output off: %w", err)
	}
	c.emit(Event{Timestamp: time.Now(), Type: EventLampOff})
	c.log.Info("lamp off")
	return nil
}

// Close preempts any running pattern, forces the output Off, and releases
// it. Every shutdown path goes through here: the lamp must never be left
// energized by a terminating process.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	active := c.active
	c.mu.Unlock()

	if active != nil {
		active.supersede()
		<-active.done
	}

	var errs []error
	if err := c.out.Set(false); err != nil {
		errs = append(errs, fmt.Errorf("force output off: %w", err))
	}
	if err := c.out.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output: %w", err))
	}
	c.emit(Event{Timestamp: time.Now(), Type: EventLampOff})

	if len(errs) > 0 {
		return fmt.Errorf("relay close: %v", errs)
	}
	return nil
}

// begin acquires exclusive ownership of the output, preempting the current
// run if one exists. The preempted run is canceled and waited out before
// the new run is installed, so two executions never interleave writes.
func (c *Controller) begin(ctx context.Context) (*run, error) {
	r := &run{done: make(chan struct{})}
	r.ctx, r.cancel = context.WithCancel(ctx)

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			r.cancel()
			return nil, ErrClosed
		}
		if c.active == nil {
			c.active = r
			c.mu.Unlock()
			return r, nil
		}
		prev := c.active
		c.mu.Unlock()

		prev.supersede()
		<-prev.done
	}
}

// finish releases ownership. Must be called exactly once per begin.
func (c *Controller) finish(r *run) {
	c.mu.Lock()
	if c.active == r {
		c.active = nil
	}
	c.mu.Unlock()
	r.cancel()
	close(r.done)
}

// abort handles a run ending early. When preempted, the successor already
// waits on r.done and writes the output next, so the line is left as-is.
// On any other failure (caller gone, hardware error) nobody takes over and
// the output settles Off.
func (c *Controller) abort(r *run, runErr error) error {
	if r.superseded.Load() {
		c.emit(Event{Timestamp: time.Now(), Type: EventSuperseded})
		c.finish(r)
		c.log.Info("flash superseded")
		return ErrSuperseded
	}

	if err := c.out.Set(false); err != nil {
		c.log.Error("settling output off after aborted flash", "error", err)
	} else {
		c.emit(Event{Timestamp: time.Now(), Type: EventLampOff})
	}
	c.finish(r)
	c.log.Info("flash aborted", "error", runErr)
	return runErr
}

// phase writes one half-cycle state and holds it for the given duration.
// The wait is interruptible so preemption never has to sit out the rest of
// the pattern.
func (c *Controller) phase(r *run, on bool, d time.Duration) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if err := c.out.Set(on); err != nil {
		return fmt.Errorf("drive output: %w", err)
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

func (c *Controller) emit(e Event) {
	if c.notify != nil {
		c.notify(e)
	}
}
