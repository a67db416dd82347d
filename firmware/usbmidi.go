//go:build tinygo

package main

import (
	"machine/usb/adc/midi"

	"github.com/rhpvorderman/midi-organ-project/pedal"
)

// usbMIDI writes USB-MIDI event packets to the device's MIDI interface.
// Packets go out as they are written, so Flush has nothing to do.
type usbMIDI struct {
	port interface {
		Write(b []byte) (int, error)
	}
}

func newUSBMIDI() usbMIDI {
	return usbMIDI{port: midi.Port()}
}

func (u usbMIDI) Send(m pedal.Message) error {
	p := m.Packet()
	_, err := u.port.Write(p[:])
	return err
}

func (usbMIDI) Flush() error { return nil }
