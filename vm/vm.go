// Package vm implements the SLIM fetch-execute loop: a 32-register,
// sparse-memory machine that runs the output of the slim package's
// resolver against a console.
package vm

import (
	"fmt"

	"github.com/lookbusy1344/worm/console"
	"github.com/lookbusy1344/worm/slim"
)

const numRegisters = 32

// DefaultMaxSteps bounds the fetch-execute loop when the caller doesn't
// supply its own limit, matching config.DefaultConfig's Execution.MaxSteps.
const DefaultMaxSteps = 10_000_000

// VM is a SLIM machine: a fixed register file, a sparse memory keyed by
// address, a program counter, and the resolved program it executes.
type VM struct {
	registers [numRegisters]int32
	mem       map[int32]int32
	written   map[int32]bool
	pc        int
	program   []slim.ResolvedCommand
	console   console.Console

	// MaxSteps bounds the number of fetch-execute cycles; 0 means use
	// DefaultMaxSteps. An unbounded SLIM `j`/`jeqz` loop must not be able
	// to hang the host process forever.
	MaxSteps uint64
	// Trace, when set, is called once per executed command before it
	// runs, for `worm run --trace`.
	Trace func(pc int, cmd slim.ResolvedCommand)
}

// New creates a VM ready to execute program against con.
func New(program []slim.ResolvedCommand, con console.Console) *VM {
	return &VM{
		mem:     map[int32]int32{},
		written: map[int32]bool{},
		program: program,
		console: con,
	}
}

// Register returns the current value of register i, for tests and
// tracing; the VM itself never exposes registers to SLIM programs except
// through the opcodes.
func (v *VM) Register(i int) int32 { return v.registers[i] }

// Run executes the program from the start until a `halt`, an
// out-of-bounds jump, or an error.
func (v *VM) Run() error {
	maxSteps := v.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	var steps uint64
	for v.pc >= 0 && v.pc < len(v.program) {
		if steps >= maxSteps {
			return ErrStepLimitExceeded
		}
		steps++

		cmd := v.program[v.pc]
		if v.Trace != nil {
			v.Trace(v.pc, cmd)
		}

		halted, err := v.exec(cmd)
		if err != nil {
			return fmt.Errorf("line pc=%d: %w", v.pc, err)
		}
		if halted {
			return nil
		}
	}
	return nil
}

// exec runs a single command, reporting whether it was `halt`.
func (v *VM) exec(cmd slim.ResolvedCommand) (halted bool, err error) {
	args := cmd.Args
	for i, a := range args {
		if cmd.Cmd == "li" && i == 1 {
			continue // li's second argument is an immediate, not a register
		}
		if a < 0 || a >= numRegisters {
			return false, fmt.Errorf("register index %d out of range", a)
		}
	}
	switch cmd.Cmd {
	case "add":
		v.registers[args[0]] = wrap32(int64(v.registers[args[1]]) + int64(v.registers[args[2]]))
	case "sub":
		v.registers[args[0]] = wrap32(int64(v.registers[args[1]]) - int64(v.registers[args[2]]))
	case "mul":
		v.registers[args[0]] = wrap32(int64(v.registers[args[1]]) * int64(v.registers[args[2]]))
	case "div", "quo":
		divisor := v.registers[args[2]]
		if divisor == 0 {
			return false, ErrDivideByZero
		}
		v.registers[args[0]] = wrap32(floorDiv(int64(v.registers[args[1]]), int64(divisor)))
	case "rem":
		divisor := v.registers[args[2]]
		if divisor == 0 {
			return false, ErrDivideByZero
		}
		a, b := swapSign(int64(v.registers[args[1]]), int64(divisor))
		v.registers[args[0]] = wrap32(pythonMod(a, b))
	case "seq":
		v.registers[args[0]] = boolInt(v.registers[args[1]] == v.registers[args[2]])
	case "sne":
		v.registers[args[0]] = boolInt(v.registers[args[1]] != v.registers[args[2]])
	case "slt":
		v.registers[args[0]] = boolInt(v.registers[args[1]] < v.registers[args[2]])
	case "sgt":
		v.registers[args[0]] = boolInt(v.registers[args[1]] > v.registers[args[2]])
	case "sle":
		v.registers[args[0]] = boolInt(v.registers[args[1]] <= v.registers[args[2]])
	case "sge":
		v.registers[args[0]] = boolInt(v.registers[args[1]] >= v.registers[args[2]])
	case "ld":
		addr := v.registers[args[1]]
		if !v.written[addr] {
			return false, fmt.Errorf("%w: address %d", ErrUnwrittenMemory, addr)
		}
		v.registers[args[0]] = v.mem[addr]
	case "st":
		addr := v.registers[args[1]]
		v.mem[addr] = v.registers[args[0]]
		v.written[addr] = true
	case "li":
		v.registers[args[0]] = int32(args[1])
	case "read":
		line, err := v.console.Read()
		if err != nil {
			return false, fmt.Errorf("read: %w", err)
		}
		n, err := parseInt32(line)
		if err != nil {
			return false, fmt.Errorf("read: %w", err)
		}
		v.registers[args[0]] = n
	case "write":
		v.console.Write(fmt.Sprintf("%d", v.registers[args[0]]))
	case "j":
		v.pc = int(v.registers[args[0]])
		return false, nil
	case "jeqz":
		if v.registers[args[0]] == 0 {
			v.pc = int(v.registers[args[1]])
		} else {
			v.pc++
		}
		return false, nil
	case "halt":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownOpcode, cmd.Cmd)
	}
	v.pc++
	return false, nil
}
