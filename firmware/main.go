//go:build tinygo

// Command firmware runs the pedalboard on the board itself: every pedal is
// a GPIO pin with a pull-up, and notes go out over USB-MIDI.
//
//	tinygo flash -target=<board> ./firmware
package main

import (
	"context"
	"machine"
	"machine/usb"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

// polling selects the 1 ms scan loop instead of pin-change interrupts.
const polling = false

func main() {
	usb.Product = "Organ Pedals"

	lines := pins{}
	tracker := pedal.NewTracker(pedal.DefaultMap, lines)
	engine := pedal.NewEngine(pedal.DefaultMap, tracker, newUSBMIDI())

	var sched pedal.Scheduler
	if polling {
		sched = pedal.NewPollingScheduler(engine, pedal.DefaultPollInterval)
	} else {
		// Blocked on the trigger channel, the scheduler leaves the core
		// asleep until a pin interrupt fires.
		sched = pedal.NewInterruptScheduler(engine, lines)
	}
	if err := sched.Run(context.Background()); err != nil {
		println("pedals stopped:", err.Error())
	}
}

// pins maps pedal lines onto the board's GPIO pins.
type pins struct{}

func (pins) Configure(id pedal.LineID) error {
	machine.Pin(id).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return nil
}

func (pins) Read(id pedal.LineID) bool {
	return machine.Pin(id).Get()
}

func (pins) OnChange(id pedal.LineID, fn func()) error {
	return machine.Pin(id).SetInterrupt(machine.PinToggle, func(machine.Pin) {
		fn()
	})
}
