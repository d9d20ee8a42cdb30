// Package ads1015 provides a driver for the ADS1015 12-bit I²C
// analog-to-digital converter in single-shot mode:
//
//	d.SelectChannel(0)
//	d.SetSampling(false)        // launches one conversion
//	for !d.ConversionDone() {}
//	raw := d.Result()           // 12-bit, right-aligned
//
// The driver implements hw.ConverterRegisters, so the adc state machine can
// drive an off-chip converter exactly the way it drives the on-chip block.
// The device has no discrete sample signal (the sampling capacitor is
// internal), so asserting sampling is a no-op and deasserting starts the
// conversion.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
package ads1015

import (
	"tinygo.org/x/drivers"

	"adcfw-go/hw"
)

// I2C address with the ADDR pin tied to ground.
const Address = 0x48

// Register pointers.
const (
	regConversion = 0x00
	regConfig     = 0x01
)

// Config register fields.
const (
	// OS bit: on write starts a single conversion, on read 1 means the
	// converter is idle (the last conversion finished).
	cfgOS = 1 << 15
	// Single-ended AIN0; adding the channel index selects AIN1..AIN3.
	cfgMuxSingle = 0x4 << 12
	// ±2.048 V full scale.
	cfgPGA2048 = 0x2 << 9
	cfgModeSingle = 1 << 8
	// 1600 samples per second.
	cfgDR1600      = 0x4 << 5
	cfgCompDisable = 0x3
)

// ResolutionBits of a conversion result.
const ResolutionBits = 12

// channelCount: single-ended inputs AIN0..AIN3.
const channelCount = 4

// Device wraps an I2C connection to an ADS1015.
type Device struct {
	bus     drivers.I2C
	Address uint16

	mux   uint16 // pending multiplexer selection
	buf   [3]byte
	fault bool
}

var _ hw.ConverterRegisters = (*Device)(nil)

// New creates a connection to an ADS1015 at the default address. The I2C bus
// must already be configured; this does not touch the device.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address, mux: cfgMuxSingle}
}

// SetPower is a no-op: the device powers itself down after every single-shot
// conversion.
func (d *Device) SetPower(on bool) {}

// SetTiming is a no-op: the data rate is pinned at 1600 SPS here and the
// internal sample window is fixed. The state machine's acquisition hold
// still applies on top.
func (d *Device) SetTiming(acqCycles, clockDiv uint8) {}

// SelectChannel latches the single-ended multiplexer selection; it is
// written to the device together with the conversion start.
func (d *Device) SelectChannel(ch uint8) {
	d.mux = uint16(0x4|ch&0x3) << 12
}

// SetSampling deasserted starts the single conversion.
func (d *Device) SetSampling(on bool) {
	if on {
		return
	}
	cfg := uint16(cfgOS) | d.mux | cfgPGA2048 | cfgModeSingle | cfgDR1600 | cfgCompDisable
	d.buf[0] = regConfig
	d.buf[1] = byte(cfg >> 8)
	d.buf[2] = byte(cfg)
	d.fault = d.bus.Tx(d.Address, d.buf[:3], nil) != nil
}

// ConversionDone reads the OS bit. A failed bus read keeps it false, so the
// caller's poll timeout decides the outcome rather than a bogus sample.
func (d *Device) ConversionDone() bool {
	var r [2]byte
	d.buf[0] = regConfig
	if err := d.bus.Tx(d.Address, d.buf[:1], r[:]); err != nil {
		d.fault = true
		return false
	}
	return r[0]&0x80 != 0
}

// Result reads the conversion register. The sample sits left-aligned in the
// 16-bit word; shifting right 4 yields the 12-bit value.
func (d *Device) Result() uint16 {
	var r [2]byte
	d.buf[0] = regConversion
	if err := d.bus.Tx(d.Address, d.buf[:1], r[:]); err != nil {
		d.fault = true
		return 0
	}
	return (uint16(r[0])<<8 | uint16(r[1])) >> 4
}

// Channels reports the single-ended multiplexer width.
func (d *Device) Channels() uint8 { return channelCount }

// Fault reports whether the last bus transaction failed.
func (d *Device) Fault() bool { return d.fault }
