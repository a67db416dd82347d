package pedal

// Lines is the sampling side of the hardware: configure a line as a
// pulled-high input, then read its logical level.
type Lines interface {
	Configure(id LineID) error
	Read(id LineID) bool
}

// TriggerLines can additionally call fn whenever a line changes level.
// fn may run in interrupt context and must not block.
type TriggerLines interface {
	Lines
	OnChange(id LineID, fn func()) error
}
