package efc

import "periph.io/x/conn/v3/physic"

// Clock reports the current core clock. Update is called once per Init and
// must refresh the value from the clock tree before returning it.
type Clock interface {
	Update() (physic.Frequency, error)
}

// FixedClock is a Clock for boards whose core clock never changes.
type FixedClock physic.Frequency

func (c FixedClock) Update() (physic.Frequency, error) {
	return physic.Frequency(c), nil
}
