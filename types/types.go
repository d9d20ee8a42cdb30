package types

// ---- System lifecycle state ----

// SystemState is the coarse power/lifecycle state of the device. Exactly one
// value is live at a time; it is owned and mutated only by system.System.
type SystemState uint8

const (
	StateInit SystemState = iota
	StateReady
	StateBusy
	StateError
	StateSleep
)

func (s SystemState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	case StateError:
		return "error"
	case StateSleep:
		return "sleep"
	}
	return "unknown"
}

// ---- Clocking ----

// ClockProfile is the derived clock tree for one oscillator selection.
// Computed once at startup and immutable afterwards. The instruction rate is
// half the system rate (two clock edges per instruction cycle).
type ClockProfile struct {
	PrimaryHz     uint32 // source frequency before multiplication
	SystemHz      uint32 // after the multiplier, if any
	InstructionHz uint32 // SystemHz / 2
}

// ---- Conversion ----

// ConversionRequest carries one conversion's channel and timing settings.
type ConversionRequest struct {
	Channel           uint8
	AcquisitionCycles uint8 // sample-and-hold window, in converter clock cycles
	ClockDivisor      uint8 // converter cycle = (ClockDivisor+1) instruction cycles
}

// Sample is one converted value. Raw is masked to Bits at the point it
// leaves the converter, so Raw <= 1<<Bits - 1 always holds.
type Sample struct {
	Raw  uint16
	Bits uint8
}

// Max returns the largest raw value a sample of this resolution can carry.
func (s Sample) Max() uint16 { return 1<<s.Bits - 1 }
