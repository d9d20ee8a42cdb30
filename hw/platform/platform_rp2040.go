//go:build rp2040

package platform

import (
	"device/arm"
	"device/rp"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"adcfw-go/hw"
)

// Default returns RP2040-backed capabilities: the on-chip ADC block (four
// muxed inputs plus the internal temperature sensor), GP0..GP15 as the GPIO
// bank (GP2..GP9 carry the LED byte on the dev board), the ARM global
// interrupt mask, and UART0 as the diagnostic console.
func Default() hw.Capabilities {
	machine.InitADC()
	for _, p := range []machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3} {
		a := machine.ADC{Pin: p}
		_ = a.Configure(machine.ADCConfig{})
	}

	console := uartx.UART0
	_ = console.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	return hw.Capabilities{
		Interrupts: rpInterrupts{},
		Ports:      &rpPorts{base: 2}, // GP2..GP17; GP0/GP1 belong to the UART
		Converter:  &rpConverter{},
		Console:    console,
	}
}

// ---- Interrupts ----

// rpInterrupts drives PRIMASK as a flat gate. The saved state from
// DisableInterrupts is deliberately dropped: the contract is non-nesting.
type rpInterrupts struct{}

func (rpInterrupts) Enable()  { arm.EnableInterrupts(0) }
func (rpInterrupts) Disable() { _ = arm.DisableInterrupts() }

// ---- Ports ----

// rpPorts exposes 16 consecutive GPIO pins as one bank. Bit i of a mask maps
// to machine.Pin(base+i).
type rpPorts struct {
	base int
}

func (p *rpPorts) ConfigureOutputs(mask uint16) {
	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		pin := machine.Pin(p.base + i)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
}

func (p *rpPorts) ConfigureInputs(mask uint16) {
	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		machine.Pin(p.base + i).Configure(machine.PinConfig{Mode: machine.PinInput})
	}
}

func (p *rpPorts) WriteOutputs(mask, value uint16) {
	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		machine.Pin(p.base + i).Set(value&(1<<i) != 0)
	}
}

// ---- Converter ----

// rpConverter maps the capability surface onto the RP2040 ADC block: AINSEL
// selects the channel, START_ONCE launches a conversion, READY is the
// completion flag and RESULT the buffer.
type rpConverter struct{}

func (rpConverter) SetPower(on bool) {
	if on {
		rp.ADC.CS.SetBits(rp.ADC_CS_EN)
	} else {
		rp.ADC.CS.ClearBits(rp.ADC_CS_EN)
	}
}

// SetTiming programs the ADC clock divider. The RP2040's sample window is
// fixed in hardware, so acqCycles only scales the state machine's hold.
func (rpConverter) SetTiming(acqCycles, clockDiv uint8) {
	rp.ADC.DIV.Set(uint32(clockDiv) << rp.ADC_DIV_INT_Pos)
}

func (rpConverter) SelectChannel(ch uint8) {
	rp.ADC.CS.ReplaceBits(uint32(ch)<<rp.ADC_CS_AINSEL_Pos, rp.ADC_CS_AINSEL_Msk, 0)
}

// SetSampling: the block has no discrete sample signal; deasserting starts
// the one-shot conversion.
func (rpConverter) SetSampling(on bool) {
	if !on {
		rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)
	}
}

func (rpConverter) ConversionDone() bool {
	return rp.ADC.CS.HasBits(rp.ADC_CS_READY)
}

func (rpConverter) Result() uint16 {
	return uint16(rp.ADC.RESULT.Get())
}

// Channels: AIN0..AIN3 plus the internal temperature sensor on 4.
func (rpConverter) Channels() uint8 { return 5 }
