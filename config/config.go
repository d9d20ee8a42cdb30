// Package config holds the device's static configuration surface: the
// oscillator selection the clock tree is derived from, the supervisory
// options (watchdog, brown-out, MCLR, code protection), and the per-port
// enable flags consumed by system initialization. Everything here is plain
// data; the only computation is the clock profile derivation.
package config

import (
	"io"
	"time"

	"adcfw-go/errcode"
	"adcfw-go/types"
)

// ---- Oscillator selection ----

// OscillatorMode selects the clock source and multiplication strategy.
// Exactly one mode is meant to be selected; OscNone stands for "nothing
// selected" and makes Compute fall back to the default profile.
type OscillatorMode uint8

const (
	OscNone OscillatorMode = iota
	OscInternalPLL
	OscInternal
	OscExternalPLL
	OscExternal
)

func (m OscillatorMode) String() string {
	switch m {
	case OscInternalPLL:
		return "internal+pll"
	case OscInternal:
		return "internal"
	case OscExternalPLL:
		return "external+pll"
	case OscExternal:
		return "external"
	}
	return "default"
}

// Clock constants for the supported oscillator paths.
const (
	// PLLPrimaryHz is the 8 MHz source the multiplier runs from.
	PLLPrimaryHz = 8_000_000
	// PLLSystemHz is the system rate after multiplication.
	PLLSystemHz = 80_000_000
	// FRCPrimaryHz is the free-running internal oscillator, used unmultiplied
	// and as the safe default when no mode is selected.
	FRCPrimaryHz = 7_370_000
)

// Compute derives the clock profile for the selected oscillator mode. It is
// pure: same mode in, same profile out. With no mode selected it substitutes
// the unmultiplied default profile and reports errcode.ConfigWarning; the
// returned profile is still valid and callers are expected to keep going.
func Compute(mode OscillatorMode) (types.ClockProfile, error) {
	switch mode {
	case OscInternalPLL, OscExternalPLL:
		return profile(PLLPrimaryHz, PLLSystemHz), nil
	case OscInternal, OscExternal:
		return profile(FRCPrimaryHz, FRCPrimaryHz), nil
	}
	return profile(FRCPrimaryHz, FRCPrimaryHz), errcode.ConfigWarning
}

func profile(primary, system uint32) types.ClockProfile {
	return types.ClockProfile{
		PrimaryHz:     primary,
		SystemHz:      system,
		InstructionHz: system / 2,
	}
}

// ---- Supervisory options ----

type Watchdog uint8

const (
	WatchdogOff Watchdog = iota
	WatchdogNormal
	WatchdogLong
)

func (w Watchdog) String() string {
	switch w {
	case WatchdogNormal:
		return "on"
	case WatchdogLong:
		return "on+long"
	}
	return "off"
}

type BrownOut uint8

const (
	BrownOutOff BrownOut = iota
	BrownOut20V
	BrownOut27V
	BrownOut42V
)

func (b BrownOut) String() string {
	switch b {
	case BrownOut20V:
		return "2.0V"
	case BrownOut27V:
		return "2.7V"
	case BrownOut42V:
		return "4.2V"
	}
	return "off"
}

// ---- Port enables ----

// Port names one GPIO bank.
type Port uint8

const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE
	PortF
	PortG
)

// PortMask is a bitset of enabled ports. Disabled ports stay high-impedance
// inputs for power savings.
type PortMask uint8

// Ports builds a mask from individual port names.
func Ports(ps ...Port) PortMask {
	var m PortMask
	for _, p := range ps {
		m |= 1 << p
	}
	return m
}

func (m PortMask) Has(p Port) bool { return m&(1<<p) != 0 }

func (m PortMask) String() string {
	if m == 0 {
		return "none"
	}
	var b []byte
	for p := PortA; p <= PortG; p++ {
		if m.Has(p) {
			b = append(b, byte('A')+byte(p))
		}
	}
	return string(b)
}

// ---- Options ----

// Options is the full static configuration. Oscillator and Ports feed the
// core directly; the rest are supervisory flags reported by Describe and
// armed outside this module (watchdog reset path, power supervision, read
// protection).
type Options struct {
	Oscillator  OscillatorMode `json:"oscillator"`
	Watchdog    Watchdog       `json:"watchdog"`
	MCLREnabled bool           `json:"mclr_enabled"`
	BrownOut    BrownOut       `json:"brown_out"`
	CodeProtect bool           `json:"code_protect"`
	ClockSwitch bool           `json:"clock_switch"`
	Debug       bool           `json:"debug"`
	Ports       PortMask       `json:"ports"`

	// SleepTimeout bounds system.EnterSleep. Zero keeps the unbounded
	// block-until-wakeup behaviour; on real hardware an external watchdog is
	// then the only way out of a wake source that never fires.
	SleepTimeout time.Duration `json:"sleep_timeout,omitempty"`
}

// Default mirrors the recommended board selection: multiplied internal
// oscillator, watchdog off, MCLR pin armed, brown-out and code protection
// off, LED bank (port B) enabled.
func Default() Options {
	return Options{
		Oscillator:  OscInternalPLL,
		Watchdog:    WatchdogOff,
		MCLREnabled: true,
		BrownOut:    BrownOutOff,
		CodeProtect: false,
		Ports:       Ports(PortB),
	}
}

// ---- Diagnostic dump ----

// Describe writes a human-readable dump of the options and the derived
// instruction frequency. A nil writer makes it a no-op, so targets without a
// console can call it unconditionally. No fmt: this also runs on MCU builds.
func (o Options) Describe(w io.Writer, instructionHz uint32) {
	if w == nil {
		return
	}
	var b []byte
	b = append(b, "system configuration:\r\n"...)
	b = appendOption(b, "oscillator", o.Oscillator.String())
	b = appendOption(b, "watchdog", o.Watchdog.String())
	b = appendOption(b, "mclr", onOff(o.MCLREnabled, "enabled", "disabled"))
	b = appendOption(b, "brown-out", o.BrownOut.String())
	b = appendOption(b, "code protect", onOff(o.CodeProtect, "on", "off"))
	b = appendOption(b, "clock switch", onOff(o.ClockSwitch, "on", "off"))
	b = appendOption(b, "ports", o.Ports.String())
	b = append(b, "  fcy: "...)
	b = appendUint(b, uint64(instructionHz))
	b = append(b, " Hz\r\n"...)
	_, _ = w.Write(b)
}

func appendOption(b []byte, name, value string) []byte {
	b = append(b, "  "...)
	b = append(b, name...)
	b = append(b, ": "...)
	b = append(b, value...)
	return append(b, "\r\n"...)
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}

func appendUint(b []byte, v uint64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, buf[i:]...)
}
