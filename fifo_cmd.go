// fifo_cmd.go - Opcode-driven decoding of FIFO command words into typed records

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import "fmt"

// FifoCmd is a tagged variant over the recognized opcode set. Only Kind
// together with the matching argument fields is meaningful; this replaces
// the dyn-dispatched command trait with borrowed/owned payload variants
// from the source this was distilled from - Go has no borrow checker, so
// every command always owns a copy of its arguments rather than aliasing
// the FIFO view.
type FifoCmd struct {
	Kind      int
	UpdateX   uint32
	UpdateY   uint32
	UpdateW   uint32
	UpdateH   uint32
	FenceVal  uint32
}

// DecodeFifoCmd pulls one opcode word and its fixed-size argument block out
// of view, in the same transaction. For opcodes that are recognized but not
// implemented (FENCE) the arguments are still consumed, so STOP advances
// correctly once the worker commits. An opcode outside the table is a
// protocol violation (category 1) and fatal.
//
// ok is false only when the view has no opcode word available at all (the
// FIFO is empty); a partially-written command (opcode present, arguments
// short) is itself a protocol violation.
func DecodeFifoCmd(v *FifoView) (cmd FifoCmd, ok bool) {
	opcode, has := v.Next()
	if !has {
		return FifoCmd{}, false
	}

	switch opcode {
	case fifoCmdUpdate:
		args, has := v.Borrow(fifoCmdUpdateArgc)
		if !has {
			panic("fifo_cmd: truncated UPDATE command")
		}
		return FifoCmd{Kind: fifoCmdUpdate, UpdateX: args[0], UpdateY: args[1], UpdateW: args[2], UpdateH: args[3]}, true

	case fifoCmdFence:
		args, has := v.Borrow(fifoCmdFenceArgc)
		if !has {
			panic("fifo_cmd: truncated FENCE command")
		}
		return FifoCmd{Kind: fifoCmdFence, FenceVal: args[0]}, true

	default:
		panic(fmt.Sprintf("fifo_cmd: unknown opcode %d", opcode))
	}
}
