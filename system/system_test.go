package system

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"adcfw-go/config"
	"adcfw-go/errcode"
	"adcfw-go/hw"
	"adcfw-go/hw/sim"
	"adcfw-go/types"
)

func simCaps(t *sim.Trace) (hw.Capabilities, *sim.Interrupts, *sim.Ports) {
	ints := sim.NewInterrupts(t)
	ports := sim.NewPorts(t)
	return hw.Capabilities{Interrupts: ints, Ports: ports}, ints, ports
}

func TestInitializeReachesReady(t *testing.T) {
	caps, ints, ports := simCaps(nil)
	s := New(config.Default(), caps)

	if got := s.State(); got != types.StateInit {
		t.Fatalf("initial state = %v, want init", got)
	}
	s.Initialize()
	if got := s.State(); got != types.StateReady {
		t.Fatalf("state after Initialize = %v, want ready", got)
	}
	if !ints.Enabled() {
		t.Fatal("interrupts should be enabled after Initialize")
	}
	if ports.Outputs()&BankPinMask != BankPinMask {
		t.Fatalf("LED byte not configured as outputs: %04x", ports.Outputs())
	}
	if ports.Latch()&BankPinMask != 0 {
		t.Fatalf("latch not cleared before direction switch: %04x", ports.Latch())
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	caps, _, _ := simCaps(nil)
	s := New(config.Default(), caps)
	s.Initialize()
	s.Initialize()
	if got := s.State(); got != types.StateReady {
		t.Fatalf("state after double Initialize = %v, want ready", got)
	}
}

func TestInitializePortSetupInsideCriticalSection(t *testing.T) {
	trace := &sim.Trace{}
	caps, _, _ := simCaps(trace)
	New(config.Default(), caps).Initialize()

	ops := trace.Ops()
	want := []string{"int.disable", "port.outputs", "int.enable"}
	if len(ops) != len(want) {
		t.Fatalf("op sequence = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op[%d] = %q, want %q (full: %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestInitializeDisabledBankGoesHighImpedance(t *testing.T) {
	opts := config.Default()
	opts.Ports = 0
	caps, _, ports := simCaps(nil)
	s := New(opts, caps)
	ports.ConfigureOutputs(BankPinMask) // pretend a previous run left outputs

	s.Initialize()
	if ports.Outputs()&BankPinMask != 0 {
		t.Fatalf("disabled bank still has outputs: %04x", ports.Outputs())
	}
}

func TestDeinitializeRevertsToInit(t *testing.T) {
	caps, _, ports := simCaps(nil)
	s := New(config.Default(), caps)
	s.Initialize()
	s.Deinitialize()
	if got := s.State(); got != types.StateInit {
		t.Fatalf("state after Deinitialize = %v, want init", got)
	}
	if ports.Outputs()&BankPinMask != 0 {
		t.Fatalf("pins still outputs after Deinitialize: %04x", ports.Outputs())
	}
}

func TestSleepBlocksUntilWakeup(t *testing.T) {
	caps, _, _ := simCaps(nil)
	s := New(config.Default(), caps)
	s.Initialize()

	entered := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(entered)
		done <- s.EnterSleep()
	}()

	<-entered
	// Wait until the sleeper has actually parked.
	for s.State() != types.StateSleep {
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
		t.Fatal("EnterSleep returned before Wakeup")
	case <-time.After(20 * time.Millisecond):
	}

	s.Wakeup() // the "interrupt handler"
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("EnterSleep returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("EnterSleep did not return after Wakeup")
	}
	if got := s.State(); got != types.StateReady {
		t.Fatalf("state after wake = %v, want ready", got)
	}
}

func TestWakeupOutsideSleepIsNoOp(t *testing.T) {
	caps, _, _ := simCaps(nil)
	s := New(config.Default(), caps)
	s.Initialize()
	s.Wakeup()
	if got := s.State(); got != types.StateReady {
		t.Fatalf("Wakeup changed state to %v", got)
	}

	s.Deinitialize()
	s.Wakeup()
	if got := s.State(); got != types.StateInit {
		t.Fatalf("Wakeup changed state to %v", got)
	}
}

func TestSleepTimeoutMovesToError(t *testing.T) {
	opts := config.Default()
	opts.SleepTimeout = 10 * time.Millisecond
	caps, _, _ := simCaps(nil)
	s := New(opts, caps)
	s.Initialize()

	err := s.EnterSleep()
	if errcode.Of(err) != errcode.Timeout {
		t.Fatalf("EnterSleep err = %v, want timeout", err)
	}
	if got := s.State(); got != types.StateError {
		t.Fatalf("state after sleep timeout = %v, want error", got)
	}
	s.MarkReady()
	if got := s.State(); got != types.StateReady {
		t.Fatalf("MarkReady did not recover: %v", got)
	}
}

func TestResetParksInInit(t *testing.T) {
	caps, _, _ := simCaps(nil)
	s := New(config.Default(), caps)
	s.Initialize()

	halted := false
	s.Halt = func() { halted = true } // returning hook, tests only
	s.Reset()
	if !halted {
		t.Fatal("Reset did not invoke the halt hook")
	}
	if got := s.State(); got != types.StateInit {
		t.Fatalf("state after Reset = %v, want init", got)
	}
}

func TestMarkBusyTransitions(t *testing.T) {
	caps, _, _ := simCaps(nil)
	s := New(config.Default(), caps)

	if err := s.MarkBusy(); errcode.Of(err) != errcode.ContractViolation {
		t.Fatalf("MarkBusy from init err = %v, want contract violation", err)
	}
	s.Initialize()
	if err := s.MarkBusy(); err != nil {
		t.Fatalf("MarkBusy from ready: %v", err)
	}
	if got := s.State(); got != types.StateBusy {
		t.Fatalf("state = %v, want busy", got)
	}
	s.MarkReady()
	if got := s.State(); got != types.StateReady {
		t.Fatalf("state = %v, want ready", got)
	}
}

func TestInterruptGateDoesNotNest(t *testing.T) {
	caps, ints, _ := simCaps(nil)
	s := New(config.Default(), caps)

	s.DisableInterrupts()
	s.DisableInterrupts()
	s.EnableInterrupts()
	if !ints.Enabled() {
		t.Fatal("two disables then one enable must leave interrupts enabled")
	}
}

func TestLifecycleWithoutCapabilities(t *testing.T) {
	// No interrupts, no ports, no console: every operation must degrade to
	// its documented no-op instead of dereferencing missing hardware.
	s := New(config.Default(), hw.Capabilities{})
	s.Initialize()
	if got := s.State(); got != types.StateReady {
		t.Fatalf("state = %v, want ready", got)
	}
	s.PrintConfiguration()
	s.Deinitialize()
}

func TestClockFrequency(t *testing.T) {
	caps, _, _ := simCaps(nil)
	s := New(config.Default(), caps)
	if got := s.ClockFrequency(); got != 40_000_000 {
		t.Fatalf("ClockFrequency = %d, want 40000000", got)
	}
	if s.ClockWarning() {
		t.Fatal("unexpected clock warning for a selected mode")
	}

	opts := config.Default()
	opts.Oscillator = config.OscNone
	s = New(opts, caps)
	if got := s.ClockFrequency(); got != 3_685_000 {
		t.Fatalf("default ClockFrequency = %d, want 3685000", got)
	}
	if !s.ClockWarning() {
		t.Fatal("expected clock warning when no mode is selected")
	}
}

func TestPrintConfiguration(t *testing.T) {
	var buf bytes.Buffer
	opts := config.Default()
	opts.Oscillator = config.OscNone
	s := New(opts, hw.Capabilities{Console: &buf})

	s.PrintConfiguration()
	out := buf.String()
	if !strings.Contains(out, "warning: no oscillator mode selected") {
		t.Fatalf("dump missing warning line:\n%s", out)
	}
	if !strings.Contains(out, "fcy: 3685000 Hz") {
		t.Fatalf("dump missing frequency line:\n%s", out)
	}
}
