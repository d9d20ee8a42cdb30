// Package hw defines the capability interfaces the firmware core consumes.
// Each interface models one hardware feature whose presence on a target is
// not guaranteed; platform factories hand out implementations, and a nil
// field in Capabilities means the feature is absent on this target.
// Consumers must degrade to their documented no-op on a nil capability,
// never reach for missing hardware.
package hw

import "io"

// InterruptControl gates global maskable interrupt delivery. The gate is a
// flat toggle, not a nesting counter: Disable twice then Enable once leaves
// interrupts enabled. Callers that need nesting must track depth themselves.
type InterruptControl interface {
	Enable()
	Disable()
}

// PortControl owns one GPIO bank's direction and output latch.
type PortControl interface {
	// ConfigureOutputs switches the masked pins to outputs. Implementations
	// clear the output latch for those pins first so they never glitch high.
	ConfigureOutputs(mask uint16)
	// ConfigureInputs switches the masked pins back to high-impedance inputs.
	ConfigureInputs(mask uint16)
	// WriteOutputs replaces the masked bits of the output latch with value.
	WriteOutputs(mask, value uint16)
}

// ConverterRegisters is the register surface of a successive-approximation
// converter block: power, timing, channel multiplexer, the sample signal and
// the result buffer.
type ConverterRegisters interface {
	SetPower(on bool)
	// SetTiming programs the sample-and-hold window (acqCycles, in converter
	// clock cycles) and converter clock divisor (one converter cycle is
	// clockDiv+1 instruction cycles).
	SetTiming(acqCycles, clockDiv uint8)
	SelectChannel(ch uint8)
	// SetSampling asserts (true) or deasserts (false) the sample signal.
	// Deasserting starts the conversion.
	SetSampling(on bool)
	ConversionDone() bool
	// Result reads the conversion buffer.
	Result() uint16
	// Channels reports the multiplexer width.
	Channels() uint8
}

// Capabilities bundles the hardware features a target provides. Console is
// the diagnostic text sink; nil means diagnostics go nowhere.
type Capabilities struct {
	Interrupts InterruptControl
	Ports      PortControl
	Converter  ConverterRegisters
	Console    io.Writer
}
