package term

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrQuit        = errors.New(f("quit requested"))
	ErrNotTerminal = errors.New(f("not a terminal"))
)
