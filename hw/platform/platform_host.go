//go:build !rp2040 && !rp2350

package platform

import (
	"os"

	"adcfw-go/hw"
	"adcfw-go/hw/sim"
)

// Default returns simulated capabilities for host builds: a 4-input
// converter that completes a conversion after a couple of completion-flag
// polls, one simulated GPIO bank, a flat interrupt gate, and stdout as the
// diagnostic sink.
func Default() hw.Capabilities {
	conv := sim.NewConverter(4)
	conv.SetDoneAfter(2)
	return hw.Capabilities{
		Interrupts: sim.NewInterrupts(nil),
		Ports:      sim.NewPorts(nil),
		Converter:  conv,
		Console:    os.Stdout,
	}
}
