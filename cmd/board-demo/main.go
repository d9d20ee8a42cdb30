// board-demo brings the board up, dumps the configuration on the console and
// mirrors the 8 MSBs of channel 0 (a potentiometer on the dev board) onto
// the LED byte of the GPIO bank.
package main

import (
	"time"

	"adcfw-go/adc"
	"adcfw-go/config"
	"adcfw-go/hw/platform"
	"adcfw-go/system"
	"adcfw-go/x/timex"
)

// samplePeriod paces the read loop so the LED bank is readable by eye.
const samplePeriod = 50 * time.Millisecond

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	caps := platform.Default()
	sys := system.New(config.Default(), caps)
	sys.Initialize()
	sys.PrintConfiguration()

	conv := adc.New(caps.Converter, adc.Config{
		InstructionHz: sys.ClockFrequency(),
		PollTimeout:   time.Second,
	})
	conv.Init()
	if !conv.Available() {
		println("no converter on this target, samples will read zero")
	}

	for {
		s, err := conv.ReadBlocking(0)
		if err != nil {
			println("read:", err.Error())
			sys.MarkError()
			time.Sleep(time.Second)
			sys.MarkReady()
			continue
		}
		if caps.Ports != nil {
			// 8 MSBs of the 12-bit sample onto the LED byte.
			caps.Ports.WriteOutputs(system.BankPinMask, s.Raw>>4)
		}
		println(timex.NowMs(), "ch0", s.Raw)
		time.Sleep(samplePeriod)
	}
}
