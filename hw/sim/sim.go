// Package sim provides in-memory implementations of the hw capability
// interfaces for host builds and tests. The converter is scripted: tests set
// per-channel raw values and how many completion-flag polls a conversion
// takes, then drive the real state machines against it.
package sim

import (
	"sync"

	"adcfw-go/hw"
)

// Trace records operation names in call order. Sharing one Trace between
// capabilities lets tests assert cross-capability ordering, e.g. that port
// mutation happens inside the interrupt-disabled window.
type Trace struct {
	mu  sync.Mutex
	ops []string
}

func (t *Trace) add(op string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.ops = append(t.ops, op)
	t.mu.Unlock()
}

// Ops returns a copy of the recorded operations.
func (t *Trace) Ops() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.ops...)
}

// ---- Interrupts ----

// Interrupts is a flat global interrupt gate. It starts disabled, matching a
// device fresh out of reset.
type Interrupts struct {
	mu      sync.Mutex
	enabled bool
	trace   *Trace
}

var _ hw.InterruptControl = (*Interrupts)(nil)

func NewInterrupts(t *Trace) *Interrupts { return &Interrupts{trace: t} }

func (i *Interrupts) Enable() {
	i.mu.Lock()
	i.enabled = true
	i.mu.Unlock()
	i.trace.add("int.enable")
}

func (i *Interrupts) Disable() {
	i.mu.Lock()
	i.enabled = false
	i.mu.Unlock()
	i.trace.add("int.disable")
}

// Enabled reports the gate state.
func (i *Interrupts) Enabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabled
}

// ---- Ports ----

// Ports simulates one GPIO bank: a direction word (bit set = output) and an
// output latch.
type Ports struct {
	mu    sync.Mutex
	dir   uint16
	latch uint16
	trace *Trace
}

var _ hw.PortControl = (*Ports)(nil)

func NewPorts(t *Trace) *Ports { return &Ports{trace: t} }

func (p *Ports) ConfigureOutputs(mask uint16) {
	p.mu.Lock()
	p.latch &^= mask // clear before switching direction, no glitches
	p.dir |= mask
	p.mu.Unlock()
	p.trace.add("port.outputs")
}

func (p *Ports) ConfigureInputs(mask uint16) {
	p.mu.Lock()
	p.dir &^= mask
	p.mu.Unlock()
	p.trace.add("port.inputs")
}

func (p *Ports) WriteOutputs(mask, value uint16) {
	p.mu.Lock()
	p.latch = p.latch&^mask | value&mask
	p.mu.Unlock()
	p.trace.add("port.write")
}

// Outputs returns the direction word (bit set = output).
func (p *Ports) Outputs() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dir
}

// Latch returns the output latch word.
func (p *Ports) Latch() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latch
}

// ---- Converter ----

// Converter simulates the SAR register block. A conversion starts when the
// sample signal is deasserted; the completion flag then reads false for
// doneAfter polls before sticking true. doneAfter < 0 never completes, which
// is how tests exercise the poll timeout.
type Converter struct {
	mu       sync.Mutex
	channels uint8
	values   map[uint8]uint16

	powered    bool
	sampling   bool
	channel    uint8
	acq, div   uint8
	buffer     uint16
	converting bool
	done       bool
	doneAfter  int
	polls      int

	ops []string
}

var _ hw.ConverterRegisters = (*Converter)(nil)

// NewConverter builds a converter with the given multiplexer width. A fresh
// converter holds junk in its buffer, like real hardware after power-up.
func NewConverter(channels uint8) *Converter {
	return &Converter{
		channels:  channels,
		values:    map[uint8]uint16{},
		buffer:    0xFFFF, // stale junk until the first conversion
		doneAfter: 1,
	}
}

// SetValue scripts the raw value channel ch converts to. Values wider than
// the converter's resolution are legal; masking is the state machine's job.
func (c *Converter) SetValue(ch uint8, raw uint16) {
	c.mu.Lock()
	c.values[ch] = raw
	c.mu.Unlock()
}

// SetDoneAfter sets how many ConversionDone polls a conversion takes.
// Negative means the conversion never completes.
func (c *Converter) SetDoneAfter(n int) {
	c.mu.Lock()
	c.doneAfter = n
	c.mu.Unlock()
}

func (c *Converter) SetPower(on bool) {
	c.mu.Lock()
	c.powered = on
	if on {
		c.ops = append(c.ops, "power.on")
	} else {
		c.ops = append(c.ops, "power.off")
	}
	c.mu.Unlock()
}

func (c *Converter) SetTiming(acqCycles, clockDiv uint8) {
	c.mu.Lock()
	c.acq, c.div = acqCycles, clockDiv
	c.ops = append(c.ops, "timing")
	c.mu.Unlock()
}

func (c *Converter) SelectChannel(ch uint8) {
	c.mu.Lock()
	c.channel = ch
	c.ops = append(c.ops, "mux")
	c.mu.Unlock()
}

func (c *Converter) SetSampling(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.sampling = true
		c.done = false
		c.ops = append(c.ops, "sample.on")
		return
	}
	if c.sampling {
		c.sampling = false
		c.converting = true
		c.polls = c.doneAfter
		c.buffer = c.values[c.channel]
		c.ops = append(c.ops, "sample.off")
	}
}

func (c *Converter) ConversionDone() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.converting {
		return c.done
	}
	if c.doneAfter < 0 {
		return false
	}
	if c.polls > 0 {
		c.polls--
		return false
	}
	c.converting = false
	c.done = true
	return true
}

func (c *Converter) Result() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, "result")
	return c.buffer
}

func (c *Converter) Channels() uint8 { return c.channels }

// Powered reports the power bit.
func (c *Converter) Powered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.powered
}

// Timing returns the last programmed acquisition and divisor settings.
func (c *Converter) Timing() (acq, div uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acq, c.div
}

// Channel returns the current multiplexer selection.
func (c *Converter) Channel() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Ops returns a copy of the register operation log.
func (c *Converter) Ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ops...)
}
