package vm

import "errors"

// ErrDivideByZero is returned by `div`, `quo` and `rem` when the divisor
// register holds zero. Division by zero is an unrecoverable VM failure,
// never a panic.
var ErrDivideByZero = errors.New("division by zero")

// ErrUnwrittenMemory is returned by `ld` when the addressed memory cell
// has never been written by `st`. SLIM memory starts undefined rather
// than zero-initialized, so a read of it fails loudly instead of
// silently returning zero.
var ErrUnwrittenMemory = errors.New("read from unwritten memory")

// ErrStepLimitExceeded is returned when the fetch-execute loop exceeds
// its MaxSteps bound, guarding against runaway programs.
var ErrStepLimitExceeded = errors.New("step limit exceeded")

// ErrUnknownOpcode is returned if a resolved command somehow carries an
// opcode the VM doesn't implement; slim.Resolve should make this
// unreachable in practice, but the VM never trusts that blindly.
var ErrUnknownOpcode = errors.New("unknown opcode")
