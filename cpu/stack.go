package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack is the return address stack. Sp is the number of entries in use,
// and the index of the next free slot.
type Stack struct {
	Data [STACK_LIMIT]uint16
	Sp   int
}

// Push stores the value then increments the stack pointer.
func (s *Stack) Push(value uint16) (ok bool) {
	if s.Full() {
		return
	}

	s.Data[s.Sp] = value
	s.Sp++
	return true
}

// Pop decrements the stack pointer then reads the value.
func (s *Stack) Pop() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	s.Sp--
	return s.Data[s.Sp], true
}

func (s *Stack) Empty() bool {
	return s.Sp == 0
}

func (s *Stack) Full() bool {
	return s.Sp == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Sp-1], true
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Sp = 0
}
