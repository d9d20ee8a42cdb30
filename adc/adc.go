// Package adc drives a successive-approximation converter through blocking
// and non-blocking acquisition. The converter walks off → idle → sampling →
// converting → idle; callers see the phases only through the operation
// contracts, never as an exported state.
//
// The package owns the converter register surface exclusively. One Converter
// serializes one conversion at a time: starting another while one is in
// flight is a contract violation, and ReadBlocking must not run concurrently
// with itself on the same instance.
package adc

import (
	"runtime"
	"time"

	"adcfw-go/errcode"
	"adcfw-go/hw"
	"adcfw-go/types"
	"adcfw-go/x/timex"
)

// Fixed sample resolution.
const (
	ResolutionBits = 12
	MaxValue       = 1<<ResolutionBits - 1
)

// defaultChannelCount stands in for the multiplexer width when the converter
// capability is absent and cannot be queried.
const defaultChannelCount = 16

type phase uint8

const (
	phaseOff phase = iota
	phaseIdle
	phaseSampling
	phaseConverting
)

// Config carries the converter's standing settings. Zero values pick the
// documented defaults.
type Config struct {
	// AcquisitionCycles is the sample-and-hold window in converter clock
	// cycles. Default 4.
	AcquisitionCycles uint8
	// ClockDivisor scales the converter clock: one converter cycle is
	// (ClockDivisor+1) instruction cycles. Default 4.
	ClockDivisor uint8
	// DefaultChannel is selected at Init.
	DefaultChannel uint8
	// InstructionHz calibrates the acquisition hold to wall-clock time.
	// Zero falls back to a fixed 1µs hold.
	InstructionHz uint32
	// PollTimeout bounds ReadBlocking's completion wait. Zero waits forever,
	// matching hardware where a stuck converter is the watchdog's problem.
	PollTimeout time.Duration
}

// Converter owns an hw.ConverterRegisters surface. A nil surface is the
// capability-absent case: every operation degrades to its documented no-op
// and Available reports false.
type Converter struct {
	regs hw.ConverterRegisters
	cfg  Config
	ph   phase
	last types.Sample
}

// New returns a powered-off converter. Call Init before sampling.
func New(regs hw.ConverterRegisters, cfg Config) *Converter {
	if cfg.AcquisitionCycles == 0 {
		cfg.AcquisitionCycles = 4
	}
	if cfg.ClockDivisor == 0 {
		cfg.ClockDivisor = 4
	}
	return &Converter{regs: regs, cfg: cfg}
}

// Available reports whether the converter hardware capability is present.
func (c *Converter) Available() bool { return c.regs != nil }

// Init configures and powers the converter: power off while programming the
// timing and default channel, discard any stale buffered value, then power
// on. Without the capability the state machine still leaves off, so the
// sampling API keeps its contracts on capability-less targets.
func (c *Converter) Init() {
	if c.regs != nil {
		c.regs.SetPower(false)
		c.regs.SetTiming(c.cfg.AcquisitionCycles, c.cfg.ClockDivisor)
		c.regs.SelectChannel(c.cfg.DefaultChannel)
		_ = c.regs.Result() // discard stale buffered value
		c.regs.SetPower(true)
	}
	c.ph = phaseIdle
}

// Start begins a single conversion on channel ch with the standing timing
// settings. It returns once the acquisition window has elapsed and the
// conversion is launched; it does not wait for completion.
func (c *Converter) Start(ch uint8) error {
	return c.StartRequest(types.ConversionRequest{
		Channel:           ch,
		AcquisitionCycles: c.cfg.AcquisitionCycles,
		ClockDivisor:      c.cfg.ClockDivisor,
	})
}

// StartRequest is Start with per-conversion timing. The channel must be
// inside the multiplexer range and no conversion may be in flight; both are
// programming errors and fail fast as contract violations.
func (c *Converter) StartRequest(req types.ConversionRequest) error {
	switch c.ph {
	case phaseOff:
		return &errcode.E{C: errcode.ContractViolation, Op: "adc.Start", Msg: "not initialized"}
	case phaseSampling, phaseConverting:
		return &errcode.E{C: errcode.ContractViolation, Op: "adc.Start", Msg: "conversion in flight"}
	}
	if req.Channel >= c.channels() {
		return &errcode.E{C: errcode.ContractViolation, Op: "adc.Start", Msg: "channel out of range"}
	}
	if c.regs == nil {
		return nil
	}
	c.regs.SetTiming(req.AcquisitionCycles, req.ClockDivisor)
	c.regs.SelectChannel(req.Channel)
	c.regs.SetSampling(true)
	c.ph = phaseSampling
	c.hold(req)
	c.regs.SetSampling(false)
	c.ph = phaseConverting
	return nil
}

// Done reports whether the in-flight conversion has completed. Without the
// capability it reports true, so callers never hang on missing hardware.
func (c *Converter) Done() bool {
	if c.regs == nil {
		return true
	}
	return c.regs.ConversionDone()
}

// Result reads the buffered value, masks it to the 12-bit range and caches
// it. Calling it before Done reports true yields a stale or partial value
// and leaves the in-flight conversion in place; callers are expected to poll
// Done first or use ReadBlocking.
func (c *Converter) Result() types.Sample {
	var raw uint16
	if c.regs != nil {
		raw = c.regs.Result()
	}
	s := types.Sample{Raw: raw & MaxValue, Bits: ResolutionBits}
	c.last = s
	if c.ph == phaseConverting && c.Done() {
		c.ph = phaseIdle
	}
	return s
}

// ReadBlocking performs one full conversion: Start, poll Done, Result. With
// Config.PollTimeout set the poll is bounded; on expiry the conversion is
// abandoned, the converter returns to idle and errcode.Timeout is returned.
func (c *Converter) ReadBlocking(ch uint8) (types.Sample, error) {
	if err := c.Start(ch); err != nil {
		return types.Sample{}, err
	}
	var deadline time.Time
	if c.cfg.PollTimeout > 0 {
		deadline = time.Now().Add(c.cfg.PollTimeout)
	}
	for !c.Done() {
		if !deadline.IsZero() && time.Now().After(deadline) {
			c.ph = phaseIdle // abandon; the next Start reprograms everything
			return types.Sample{}, &errcode.E{C: errcode.Timeout, Op: "adc.ReadBlocking"}
		}
		runtime.Gosched()
	}
	return c.Result(), nil
}

// Last returns the most recently cached sample.
func (c *Converter) Last() types.Sample { return c.last }

// hold waits out the acquisition window: AcquisitionCycles converter cycles
// of (ClockDivisor+1) instruction cycles each, converted to wall-clock time
// from the instruction frequency. An uncalibrated converter (InstructionHz
// zero) holds a fixed 1µs instead; either way the window never collapses
// below 1µs, so the sampling capacitor always gets a real settle window.
func (c *Converter) hold(req types.ConversionRequest) {
	d := time.Microsecond
	if c.cfg.InstructionHz != 0 {
		n := uint32(req.AcquisitionCycles) * (uint32(req.ClockDivisor) + 1)
		if cd := timex.CycleDuration(n, c.cfg.InstructionHz); cd > d {
			d = cd
		}
	}
	time.Sleep(d)
}

func (c *Converter) channels() uint8 {
	if c.regs == nil {
		return defaultChannelCount
	}
	return c.regs.Channels()
}
