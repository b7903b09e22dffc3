package slim

// ParsedLine is the sum type produced by Parse: every source line becomes
// exactly one of ParsedCommand, ParsedLabel, ParsedAlloc, or ParsedBlank
// (comment-only or empty after trimming). A line matching none of these
// forms yields no ParsedLine and is reported as a MalformedLineError.
type ParsedLine interface {
	line() int
}

type parsedBase struct {
	Line int
}

func (p parsedBase) line() int { return p.Line }

// ParsedCommand is an opcode mnemonic with its raw, unresolved argument
// tokens (each either an integer literal, a register name, or a label
// name — which one is decided later by the resolver).
type ParsedCommand struct {
	parsedBase
	Cmd  string
	Args []string
}

// ParsedLabel declares a jump target at the position of the next command.
type ParsedLabel struct {
	parsedBase
	Name string
}

// ParsedAlloc is an `allocate-registers` declaration binding one or more
// names to consecutive register slots.
type ParsedAlloc struct {
	parsedBase
	Names []string
}

// ParsedBlank is a comment-only or empty line, kept only so line numbers
// in diagnostics stay aligned with the source file; it carries no
// information forward into naming.
type ParsedBlank struct {
	parsedBase
}

// NamedCommand is a ParsedCommand as the namer emits it; labels that point
// at it are recorded by command index in NamedProgram.Labels, and its own
// cmd/args/line are unchanged from parsing.
type NamedCommand struct {
	Cmd  string
	Args []string
	Line int
}

// NamedProgram is the output of naming: a flat, label-free command list
// plus the register and label name tables built while walking it.
type NamedProgram struct {
	Lines     []NamedCommand
	Registers map[string]int
	Labels    map[string]int
}

// ResolvedCommand is a NamedCommand whose arguments have all been resolved
// to plain integers: register indices, label targets (as command
// indices), or literal immediates. This is what the VM actually executes.
type ResolvedCommand struct {
	Cmd  string
	Args []int
}
