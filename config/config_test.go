package config

import (
	"bytes"
	"strings"
	"testing"

	"adcfw-go/errcode"
)

func TestComputeProfiles(t *testing.T) {
	type C struct {
		mode     OscillatorMode
		primary  uint32
		system   uint32
		instr    uint32
		wantWarn bool
	}
	for _, c := range []C{
		{OscInternalPLL, 8_000_000, 80_000_000, 40_000_000, false},
		{OscExternalPLL, 8_000_000, 80_000_000, 40_000_000, false},
		{OscInternal, 7_370_000, 7_370_000, 3_685_000, false},
		{OscExternal, 7_370_000, 7_370_000, 3_685_000, false},
		{OscNone, 7_370_000, 7_370_000, 3_685_000, true},
	} {
		p, err := Compute(c.mode)
		if p.PrimaryHz != c.primary || p.SystemHz != c.system || p.InstructionHz != c.instr {
			t.Fatalf("Compute(%v) = %+v, want %d/%d/%d", c.mode, p, c.primary, c.system, c.instr)
		}
		if c.wantWarn {
			if errcode.Of(err) != errcode.ConfigWarning {
				t.Fatalf("Compute(%v) err = %v, want config warning", c.mode, err)
			}
		} else if err != nil {
			t.Fatalf("Compute(%v) err = %v, want nil", c.mode, err)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	a, _ := Compute(OscInternalPLL)
	b, _ := Compute(OscInternalPLL)
	if a != b {
		t.Fatalf("profiles differ: %+v vs %+v", a, b)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := Default()
	if o.Oscillator != OscInternalPLL {
		t.Fatalf("default oscillator = %v", o.Oscillator)
	}
	if o.Watchdog != WatchdogOff || o.BrownOut != BrownOutOff || o.CodeProtect {
		t.Fatalf("default supervisory flags wrong: %+v", o)
	}
	if !o.MCLREnabled {
		t.Fatal("default MCLR should be enabled")
	}
	if !o.Ports.Has(PortB) || o.Ports.Has(PortA) {
		t.Fatalf("default ports = %v, want B only", o.Ports)
	}
}

func TestPortMask(t *testing.T) {
	m := Ports(PortA, PortC)
	if !m.Has(PortA) || !m.Has(PortC) || m.Has(PortB) {
		t.Fatalf("mask membership wrong: %v", m)
	}
	if got := m.String(); got != "AC" {
		t.Fatalf("mask string = %q, want %q", got, "AC")
	}
	if got := PortMask(0).String(); got != "none" {
		t.Fatalf("empty mask string = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	var buf bytes.Buffer
	Default().Describe(&buf, 40_000_000)
	out := buf.String()
	for _, want := range []string{
		"oscillator: internal+pll",
		"watchdog: off",
		"mclr: enabled",
		"brown-out: off",
		"code protect: off",
		"ports: B",
		"fcy: 40000000 Hz",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDescribeNilWriterIsNoOp(t *testing.T) {
	Default().Describe(nil, 0) // must not panic
}
