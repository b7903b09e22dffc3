package slim

import (
	"sort"

	"github.com/samber/lo"
)

// MaxRegisters is the size of the fixed SLIM register file.
const MaxRegisters = 32

// RegisterNames returns the program's register names sorted by slot, for
// use in trace output and diagnostics.
func (p *NamedProgram) RegisterNames() []string {
	names := lo.Keys(p.Registers)
	sort.Slice(names, func(i, j int) bool { return p.Registers[names[i]] < p.Registers[names[j]] })
	return names
}

// LabelNames returns the program's label names sorted by target command
// index.
func (p *NamedProgram) LabelNames() []string {
	names := lo.Keys(p.Labels)
	sort.Slice(names, func(i, j int) bool { return p.Labels[names[i]] < p.Labels[names[j]] })
	return lo.Uniq(names)
}

// Name resolves labels to command indices and allocate-registers
// declarations to register slots, producing a flat, label-free command
// list. Errors from unrelated lines are accumulated rather than
// short-circuiting, so `allocate-registers x` twice and an unrelated bad
// label both show up in one pass.
func Name(lines []ParsedLine) (*NamedProgram, *ErrorList) {
	registers := map[string]int{}
	labels := map[string]int{}
	errs := &ErrorList{}

	var named []NamedCommand
	var pendingLabels []string

	bind := func(name string, line int) bool {
		if _, ok := registers[name]; ok {
			errs.Add(newRegisterInUseError(name, line))
			return false
		}
		if _, ok := labels[name]; ok {
			errs.Add(newRegisterInUseError(name, line))
			return false
		}
		if len(registers) >= MaxRegisters {
			errs.Add(newNoMoreRegistersError(name, line))
			return false
		}
		registers[name] = len(registers)
		return true
	}

	for _, line := range lines {
		switch l := line.(type) {
		case ParsedBlank:
			continue

		case ParsedAlloc:
			for _, name := range l.Names {
				bind(name, l.Line)
			}

		case ParsedLabel:
			if _, ok := registers[l.Name]; ok {
				errs.Add(newLabelInUseError(l.Name, l.Line))
				continue
			}
			if _, ok := labels[l.Name]; ok {
				errs.Add(newLabelInUseError(l.Name, l.Line))
				continue
			}
			if lo.Contains(pendingLabels, l.Name) {
				errs.Add(newLabelInUseError(l.Name, l.Line))
				continue
			}
			pendingLabels = append(pendingLabels, l.Name)

		case ParsedCommand:
			for _, label := range pendingLabels {
				labels[label] = len(named)
			}
			pendingLabels = nil
			named = append(named, NamedCommand{Cmd: l.Cmd, Args: l.Args, Line: l.Line})
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return &NamedProgram{Lines: named, Registers: registers, Labels: labels}, errs
}
