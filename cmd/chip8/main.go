// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/term"
	"github.com/ezrec/chip8/translate"
)

func main() {
	var compile bool
	var output string
	var cycles int
	var hz int
	var seed uint64
	var verbose bool
	var lang string

	flag.BoolVar(&compile, "c", false, "Argument is assembler source, not a binary image")
	flag.StringVar(&output, "o", "", "Write the program image to this file, do not execute")
	flag.IntVar(&cycles, "cycles", emulator.CYCLES_PER_FRAME, "Instructions per frame")
	flag.IntVar(&hz, "hz", emulator.FRAME_RATE, "Frames per second")
	flag.Uint64Var(&seed, "seed", 0, "Random number seed (0 for a random seed)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "Language for runtime messages (default from the environment)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if cycles < 1 || hz < 1 {
		log.Fatalf("%v: -cycles and -hz must be positive", os.Args[0])
	}

	if len(lang) != 0 {
		translate.SetLocales(lang)
	}

	path := flag.Arg(0)

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.CyclesPerFrame = cycles
	emu.FrameRate = hz
	if seed != 0 {
		emu.Cpu.Rand = rand.New(rand.NewPCG(seed, seed))
	}

	inf, err := os.Open(path)
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	if compile {
		err = emu.Assemble(inf)
	} else {
		err = emu.LoadFrom(inf)
	}
	inf.Close()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	// Only produce the image.
	if len(output) != 0 {
		err = os.WriteFile(output, emu.Image, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	tm, err := term.Open(os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v: stdin: %v", os.Args[0], err)
	}
	tm.Verbose = verbose

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = emu.Run(ctx, tm)
	stop()

	err = errors.Join(ignoreStop(err), tm.Close())
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
}

// ignoreStop drops the errors of an operator requested stop.
func ignoreStop(err error) error {
	if errors.Is(err, term.ErrQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
