package cpu

const (
	KEY_COUNT = 16 // Keys 0-F of the hexadecimal keypad
)

// Keypad is the input latch. The host writes it between ticks with Press
// and Release; the cpu reads it.
//
// Besides the held state, each release-to-press transition is latched
// so that wait-for-key sees presses that happen between two ticks.
type Keypad struct {
	Held [KEY_COUNT]bool

	pressed uint16 // one bit per key pressed since the last clear
}

// Press marks key as held down.
func (kp *Keypad) Press(key int) (err error) {
	if key < 0 || key >= KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	if !kp.Held[key] {
		kp.pressed |= 1 << key
	}
	kp.Held[key] = true
	return
}

// Release marks key as up.
func (kp *Keypad) Release(key int) (err error) {
	if key < 0 || key >= KEY_COUNT {
		err = ErrKeyInvalid
		return
	}

	kp.Held[key] = false
	return
}

// Down returns true if key is held.
func (kp *Keypad) Down(key int) bool {
	if key < 0 || key >= KEY_COUNT {
		return false
	}

	return kp.Held[key]
}

// Reset releases all keys.
func (kp *Keypad) Reset() {
	clear(kp.Held[:])
	kp.pressed = 0
}

// clearPresses forgets latched presses.
func (kp *Keypad) clearPresses() {
	kp.pressed = 0
}

// takePress returns, and forgets, the lowest key pressed since the
// last clear.
func (kp *Keypad) takePress() (key byte, ok bool) {
	if kp.pressed == 0 {
		return
	}

	for n := 0; n < KEY_COUNT; n++ {
		if kp.pressed&(1<<n) != 0 {
			kp.pressed &^= 1 << n
			key, ok = byte(n), true
			return
		}
	}

	return
}
