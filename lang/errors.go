package lang

import "fmt"

// SyntaxError reports a single malformed construct, with the source line
// it occurred on. Unlike the SLIM assembler's compile errors, front-end
// syntax errors are not accumulated: the restricted subset is simple
// enough that the first violation aborts compilation immediately, the
// same way the original compiler's panic() does.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
