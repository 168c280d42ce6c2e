package cpu

// Timers are the delay and sound countdown registers.
// The host ticks them at 60Hz; neither goes below zero.
type Timers struct {
	Delay byte
	Sound byte
}

// TickDelay decrements the delay timer.
func (tm *Timers) TickDelay() {
	if tm.Delay > 0 {
		tm.Delay--
	}
}

// TickSound decrements the sound timer.
func (tm *Timers) TickSound() {
	if tm.Sound > 0 {
		tm.Sound--
	}
}

// Tick decrements both timers.
func (tm *Timers) Tick() {
	tm.TickDelay()
	tm.TickSound()
}

// Beeping returns true while the sound timer is running.
func (tm *Timers) Beeping() bool {
	return tm.Sound > 0
}
