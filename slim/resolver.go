package slim

import (
	"regexp"
	"strconv"
)

// argKind distinguishes what kind of name an opcode argument expects:
// a register, or a label (jump target).
type argKind int

const (
	argRegister argKind = iota
	argLabel
)

// opcodeArity lists, for each of SLIM's 20 opcodes, the kind expected for
// each argument position. The length of the slice is also the opcode's
// required argument count.
var opcodeArity = map[string][]argKind{
	"add":   {argRegister, argRegister, argRegister},
	"sub":   {argRegister, argRegister, argRegister},
	"mul":   {argRegister, argRegister, argRegister},
	"div":   {argRegister, argRegister, argRegister},
	"quo":   {argRegister, argRegister, argRegister},
	"rem":   {argRegister, argRegister, argRegister},
	"seq":   {argRegister, argRegister, argRegister},
	"sne":   {argRegister, argRegister, argRegister},
	"slt":   {argRegister, argRegister, argRegister},
	"sgt":   {argRegister, argRegister, argRegister},
	"sle":   {argRegister, argRegister, argRegister},
	"sge":   {argRegister, argRegister, argRegister},
	"ld":    {argRegister, argRegister},
	"st":    {argRegister, argRegister},
	"li":    {argRegister, argLabel},
	"read":  {argRegister},
	"write": {argRegister},
	"j":     {argRegister},
	"jeqz":  {argRegister, argRegister},
	"halt":  {},
}

var intLiteralRe = regexp.MustCompile(`^-?\d+$`)

// Resolve validates every command's opcode and arity, then resolves each
// argument to a plain int: an integer literal, a register slot, or (for
// `li`'s second argument only) a label's command index.
func Resolve(program *NamedProgram) ([]ResolvedCommand, *ErrorList) {
	errs := &ErrorList{}
	var resolved []ResolvedCommand

	for _, cmd := range program.Lines {
		arity, ok := opcodeArity[cmd.Cmd]
		if !ok {
			errs.Add(newUnknownOpcodeError(cmd.Cmd, cmd.Line))
			continue
		}
		if len(cmd.Args) < len(arity) {
			errs.Add(newMissingArgumentError(cmd.Line))
			continue
		}
		if len(cmd.Args) > len(arity) {
			errs.Add(newTooManyArgumentsError(cmd.Line))
			continue
		}

		var args []int
		ok = true
		for i, raw := range cmd.Args {
			val, argErrs := resolveArg(raw, arity[i], cmd.Line, program)
			if len(argErrs) > 0 {
				errs.AddAll(argErrs)
				ok = false
				continue
			}
			args = append(args, val)
		}
		if ok {
			resolved = append(resolved, ResolvedCommand{Cmd: cmd.Cmd, Args: args})
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return resolved, errs
}

func resolveArg(arg string, expected argKind, line int, program *NamedProgram) (int, []CompileError) {
	if intLiteralRe.MatchString(arg) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, []CompileError{newUnknownNameError(arg, line)}
		}
		return n, nil
	}

	if reg, ok := program.Registers[arg]; ok {
		if expected == argRegister {
			return reg, nil
		}
		return 0, []CompileError{newExpectedLabelError(arg, line)}
	}

	if label, ok := program.Labels[arg]; ok {
		if expected == argLabel {
			return label, nil
		}
		return 0, []CompileError{newExpectedRegisterError(arg, line)}
	}

	return 0, []CompileError{newUnknownNameError(arg, line)}
}
