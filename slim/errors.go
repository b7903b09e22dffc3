package slim

import (
	"fmt"
	"strings"
)

// CompileError is a single diagnostic produced while parsing, naming or
// resolving a SLIM program. Unlike the front end's SyntaxError, SLIM
// compilation accumulates every error it finds in a pass before reporting.
type CompileError interface {
	error
	Line() int
}

type baseError struct {
	line int
}

func (e baseError) Line() int { return e.line }

// UnknownOpcodeError reports a command name that isn't one of the 20
// recognized SLIM opcodes.
type UnknownOpcodeError struct {
	baseError
	Name string
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("Unknown opcode '%s' in line %d.", e.Name, e.line)
}

// MissingArgumentError reports a command with fewer arguments than its
// opcode requires.
type MissingArgumentError struct{ baseError }

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("Missing argument in line %d.", e.line)
}

// TooManyArgumentsError reports a command with more arguments than its
// opcode accepts.
type TooManyArgumentsError struct{ baseError }

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("Too many arguments in line %d.", e.line)
}

// UnknownNameError reports an argument that is neither an integer literal,
// a known register name, nor a known label.
type UnknownNameError struct {
	baseError
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("Unknown name '%s' in line %d.", e.Name, e.line)
}

// ExpectedRegisterError reports a label name used where a register was
// required.
type ExpectedRegisterError struct {
	baseError
	Name string
}

func (e *ExpectedRegisterError) Error() string {
	return fmt.Sprintf("Expected a register, but '%s' in line %d is a label.", e.Name, e.line)
}

// ExpectedLabelError reports a register name used where a label was
// required.
type ExpectedLabelError struct {
	baseError
	Name string
}

func (e *ExpectedLabelError) Error() string {
	return fmt.Sprintf("Expected a label, but '%s' in line %d is a register.", e.Name, e.line)
}

// RegisterInUseError reports an allocate-registers declaration that
// reuses a name already bound to a register or label.
type RegisterInUseError struct {
	baseError
	Name string
}

func (e *RegisterInUseError) Error() string {
	return fmt.Sprintf("Name '%s' is already in use in line %d.", e.Name, e.line)
}

// LabelInUseError reports a label declaration that reuses a name already
// bound to a register or another label.
type LabelInUseError struct {
	baseError
	Name string
}

func (e *LabelInUseError) Error() string {
	return fmt.Sprintf("Label '%s' is already in use in line %d.", e.Name, e.line)
}

// NoMoreRegistersError reports an allocate-registers declaration that
// would exceed the fixed 32-register file.
type NoMoreRegistersError struct {
	baseError
	Name string
}

func (e *NoMoreRegistersError) Error() string {
	return fmt.Sprintf("No more registers available for '%s' in line %d.", e.Name, e.line)
}

// MalformedLineError reports a line that matches none of SLIM's three
// recognized line forms: a label, an allocate-registers declaration, or a
// command.
type MalformedLineError struct {
	baseError
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("Malformed line %d: %q.", e.line, e.Text)
}

func newUnknownOpcodeError(name string, line int) *UnknownOpcodeError {
	return &UnknownOpcodeError{baseError{line}, name}
}
func newMissingArgumentError(line int) *MissingArgumentError {
	return &MissingArgumentError{baseError{line}}
}
func newTooManyArgumentsError(line int) *TooManyArgumentsError {
	return &TooManyArgumentsError{baseError{line}}
}
func newUnknownNameError(name string, line int) *UnknownNameError {
	return &UnknownNameError{baseError{line}, name}
}
func newExpectedRegisterError(name string, line int) *ExpectedRegisterError {
	return &ExpectedRegisterError{baseError{line}, name}
}
func newExpectedLabelError(name string, line int) *ExpectedLabelError {
	return &ExpectedLabelError{baseError{line}, name}
}
func newRegisterInUseError(name string, line int) *RegisterInUseError {
	return &RegisterInUseError{baseError{line}, name}
}
func newLabelInUseError(name string, line int) *LabelInUseError {
	return &LabelInUseError{baseError{line}, name}
}
func newNoMoreRegistersError(name string, line int) *NoMoreRegistersError {
	return &NoMoreRegistersError{baseError{line}, name}
}
func newMalformedLineError(text string, line int) *MalformedLineError {
	return &MalformedLineError{baseError{line}, text}
}

// ErrorList accumulates CompileErrors across an entire pass, mirroring the
// original compiler's policy of reporting every violation it finds rather
// than aborting on the first.
type ErrorList struct {
	Errors []CompileError
}

func (el *ErrorList) Add(err CompileError) {
	el.Errors = append(el.Errors, err)
}

func (el *ErrorList) AddAll(errs []CompileError) {
	el.Errors = append(el.Errors, errs...)
}

func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Error() string {
	var sb strings.Builder
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}
