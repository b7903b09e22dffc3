package slim

import (
	"regexp"
	"strings"
)

// nameRegex matches a register or label name: a non-digit first
// character followed by any run of non-whitespace, non-comma characters.
const nameRegex = `[^\d\s,][^\s,]*`

var (
	labelRe = regexp.MustCompile(`^(` + nameRegex + `):$`)
	// allocate-registers historically only accepted comma-separated names;
	// this also accepts bare whitespace between names, since both forms
	// show up in hand-written SLIM listings in the wild.
	allocRe   = regexp.MustCompile(`^allocate-registers\s+(.+)$`)
	allocSep  = regexp.MustCompile(`[\s,]+`)
	commandRe = regexp.MustCompile(`^([a-z]+)(?:\s+(.+))?$`)
	argSepRe  = regexp.MustCompile(`[\s,]+`)
)

// Parse classifies each source line as a label, an allocate-registers
// declaration, a command, or blank. It never stops early: a line matching
// none of the three recognized forms is recorded as a MalformedLineError
// and parsing continues, so the caller sees every malformed line in the
// file instead of just the first.
func Parse(code []string) ([]ParsedLine, *ErrorList) {
	errs := &ErrorList{}
	var lines []ParsedLine

	for i, raw := range code {
		lineNum := i + 1
		clean := cleanLine(raw)
		if clean == "" {
			lines = append(lines, ParsedBlank{parsedBase{lineNum}})
			continue
		}

		if m := labelRe.FindStringSubmatch(clean); m != nil {
			lines = append(lines, ParsedLabel{parsedBase{lineNum}, m[1]})
			continue
		}

		if m := allocRe.FindStringSubmatch(clean); m != nil {
			names := allocSep.Split(strings.TrimSpace(m[1]), -1)
			lines = append(lines, ParsedAlloc{parsedBase{lineNum}, names})
			continue
		}

		if m := commandRe.FindStringSubmatch(clean); m != nil {
			cmd := m[1]
			var args []string
			if m[2] != "" {
				for _, arg := range argSepRe.Split(m[2], -1) {
					args = append(args, strings.TrimSpace(arg))
				}
			}
			lines = append(lines, ParsedCommand{parsedBase{lineNum}, cmd, args})
			continue
		}

		errs.Add(newMalformedLineError(clean, lineNum))
	}

	return lines, errs
}

// cleanLine strips a trailing `;`-introduced comment and surrounding
// whitespace.
func cleanLine(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
