// Package main provides the entry point for chip8.
// chip8 is a CHIP-8 virtual machine with window, terminal and headless
// frontends.
//
// For the full CLI, use: go run ./cmd/chip8
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("chip8 - CHIP-8 Virtual Machine")
	fmt.Println("")
	fmt.Println("Usage: chip8 [options] <rom.ch8>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -profile   original or modern")
	fmt.Println("  -frontend  ebiten, sdl, term or headless")
	fmt.Println("  -timing    Path to cycle-cost JSON file")
	fmt.Println("  -fast      Run without frame pacing")
	fmt.Println("  -v         Log verbosity")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/chip8' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the microbenchmarks.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/chip8' instead.")
	}
}
