// Package system owns the device lifecycle state machine: power-on
// initialization, sleep/wake, reset, and the derived clock profile. It is the
// sole owner and mutator of the SystemState value; other components observe
// it through State() only.
//
// Execution model: everything here runs on the single logical thread of
// control, except Wakeup, which an interrupt-level context may call while
// EnterSleep is polling. State is therefore an atomic word rather than a
// plain field.
package system

import (
	"runtime"
	"sync/atomic"
	"time"

	"adcfw-go/config"
	"adcfw-go/errcode"
	"adcfw-go/hw"
	"adcfw-go/types"
)

// BankPinMask covers the low byte of the managed GPIO bank: the eight pins
// the board wires to LEDs when the bank is enabled.
const BankPinMask uint16 = 0x00FF

// System sequences the lifecycle. Zero state is Init; construct with New.
type System struct {
	opts      config.Options
	caps      hw.Capabilities
	clock     types.ClockProfile
	clockWarn bool

	// Halt parks the caller after Reset and must never return on hardware.
	// Tests substitute a returning hook to observe the terminal state.
	Halt func()

	state atomic.Uint32
}

// New derives the clock profile from the options (keeping the configuration
// warning, if any, for the diagnostic dump) and returns a System in Init.
func New(opts config.Options, caps hw.Capabilities) *System {
	profile, err := config.Compute(opts.Oscillator)
	s := &System{
		opts:      opts,
		caps:      caps,
		clock:     profile,
		clockWarn: err != nil,
	}
	s.Halt = func() {
		for {
			runtime.Gosched()
		}
	}
	return s
}

// ---- Transitions ----

// Initialize brings the device to Ready. Port directions are applied inside
// an interrupt-disabled critical section so an interrupt handler can never
// observe a half-configured bank. Calling it again is harmless and ends in
// Ready either way.
func (s *System) Initialize() {
	s.DisableInterrupts()
	s.configurePorts()
	s.setState(types.StateReady)
	s.EnableInterrupts()
}

// Deinitialize reverts the bank to inputs and returns to Init. Callable from
// any state.
func (s *System) Deinitialize() {
	if s.caps.Ports != nil {
		s.caps.Ports.ConfigureInputs(BankPinMask)
	}
	s.setState(types.StateInit)
}

// EnterSleep parks the caller until another execution context calls Wakeup.
// It stands in for a hardware low-power instruction: the loop only yields,
// it does not stop any clocks. Wake sources must be armed by the caller
// beforehand. With Options.SleepTimeout > 0 the wait is bounded; exceeding
// it moves the system to Error and returns errcode.Timeout (MarkReady
// recovers). With zero it blocks indefinitely and only an external watchdog
// can break a wake source that never fires.
func (s *System) EnterSleep() error {
	s.setState(types.StateSleep)
	var deadline time.Time
	if s.opts.SleepTimeout > 0 {
		deadline = time.Now().Add(s.opts.SleepTimeout)
	}
	for s.State() == types.StateSleep {
		if !deadline.IsZero() && time.Now().After(deadline) {
			s.setState(types.StateError)
			return &errcode.E{C: errcode.Timeout, Op: "system.EnterSleep"}
		}
		runtime.Gosched()
	}
	return nil
}

// Wakeup moves Sleep to Ready and is a no-op in any other state. Safe to
// call from an interrupt-level context while EnterSleep is polling.
func (s *System) Wakeup() {
	s.state.CompareAndSwap(uint32(types.StateSleep), uint32(types.StateReady))
}

// Reset returns the machine to Init and then parks forever waiting for a
// physical reset. It never returns unless Halt has been replaced.
func (s *System) Reset() {
	s.setState(types.StateInit)
	s.Halt()
}

// MarkBusy claims the device for a long-running operation. Only Ready may
// become Busy; anything else is a caller error.
func (s *System) MarkBusy() error {
	if !s.state.CompareAndSwap(uint32(types.StateReady), uint32(types.StateBusy)) {
		return &errcode.E{C: errcode.ContractViolation, Op: "system.MarkBusy", Msg: "not ready"}
	}
	return nil
}

// MarkReady releases Busy or recovers from Error. No-op in other states.
func (s *System) MarkReady() {
	s.state.CompareAndSwap(uint32(types.StateBusy), uint32(types.StateReady))
	s.state.CompareAndSwap(uint32(types.StateError), uint32(types.StateReady))
}

// MarkError records a fault from any state.
func (s *System) MarkError() {
	s.setState(types.StateError)
}

// ---- Reads ----

// State returns the current lifecycle state.
func (s *System) State() types.SystemState {
	return types.SystemState(s.state.Load())
}

// Clock returns the derived clock profile.
func (s *System) Clock() types.ClockProfile { return s.clock }

// ClockFrequency returns the instruction frequency in Hz.
func (s *System) ClockFrequency() uint32 { return s.clock.InstructionHz }

// ClockWarning reports whether the default profile was substituted because
// no oscillator mode was selected.
func (s *System) ClockWarning() bool { return s.clockWarn }

// ---- Interrupt gate ----

// EnableInterrupts opens the global interrupt gate. The gate does not nest.
// No-op without the capability.
func (s *System) EnableInterrupts() {
	if s.caps.Interrupts != nil {
		s.caps.Interrupts.Enable()
	}
}

// DisableInterrupts closes the global interrupt gate. No-op without the
// capability.
func (s *System) DisableInterrupts() {
	if s.caps.Interrupts != nil {
		s.caps.Interrupts.Disable()
	}
}

// ---- Diagnostics ----

// PrintConfiguration writes the active configuration and instruction
// frequency to the console capability. Without a console it does nothing.
func (s *System) PrintConfiguration() {
	if s.caps.Console == nil {
		return
	}
	if s.clockWarn {
		_, _ = s.caps.Console.Write([]byte("warning: no oscillator mode selected, default profile in use\r\n"))
	}
	s.opts.Describe(s.caps.Console, s.clock.InstructionHz)
}

// ---- Internals ----

func (s *System) setState(st types.SystemState) {
	s.state.Store(uint32(st))
}

// configurePorts applies the configured direction to the managed bank: the
// LED byte as outputs when the bank is enabled, high-impedance inputs when
// it is not.
func (s *System) configurePorts() {
	if s.caps.Ports == nil {
		return
	}
	if s.opts.Ports.Has(config.PortB) {
		s.caps.Ports.ConfigureOutputs(BankPinMask)
	} else {
		s.caps.Ports.ConfigureInputs(BankPinMask)
	}
}
