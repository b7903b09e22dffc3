// Package lowering translates a parsed program (package ast) into SLIM
// assembly text (package slim's input format). It follows the original
// compiler's scheme exactly: a module-level scope plus one flat scope per
// function, a handful of reserved registers, and a small set of
// instruction-emitting helpers that every visit method builds on.
package lowering

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/lookbusy1344/worm/ast"
)

const maxRegisters = 32

// mainScope names the module-level namespace; function bodies get their
// own namespace keyed by function name.
const mainScope = ""

const (
	result       = "result"
	zero         = "zero"
	one          = "one"
	jumpLabel    = "jump-label"
	stackPointer = "stack-pointer"
)

// namespace tracks the local-register slots a single scope (module or one
// function body) has allocated so far, in the order names were first seen.
type namespace struct {
	names      map[string]string
	localCount int
}

// Lowerer walks a Module and accumulates SLIM instruction lines. Reused
// register names across scopes (every scope's k-th local is the same
// physical register, local-k) are made safe by the call convention's
// push/pop save-restore around every user call, not by giving each call
// its own registers.
type Lowerer struct {
	namespaces map[string]*namespace
	scope      string

	registers map[string]bool
	argCount  int

	lines []string

	breakLabels    []string
	continueLabels []string

	labelCounts map[string]int
}

// New returns a Lowerer with its reserved registers pre-allocated.
func New() *Lowerer {
	lw := &Lowerer{
		namespaces:  map[string]*namespace{},
		scope:       mainScope,
		registers:   map[string]bool{},
		labelCounts: map[string]int{},
	}
	for _, r := range []string{result, zero, one, jumpLabel, stackPointer} {
		lw.registers[r] = true
	}
	return lw
}

// Lower compiles mod into SLIM assembly text.
func Lower(mod *ast.Module) (string, error) {
	lw := New()
	for _, stmt := range mod.Body {
		if err := lw.lowerStmt(stmt); err != nil {
			return "", err
		}
	}
	return lw.finish()
}

func (lw *Lowerer) finish() (string, error) {
	if len(lw.registers) > maxRegisters {
		return "", newError(0, "expression stack overflow")
	}
	names := lo.Keys(lw.registers)
	sort.Strings(names)

	out := make([]string, 0, len(lw.lines)+5)
	out = append(out, "allocate-registers "+strings.Join(names, ", "))
	out = append(out,
		fmt.Sprintf("li %s, 0", zero),
		fmt.Sprintf("li %s, 1", one),
		fmt.Sprintf("li %s, 0", stackPointer),
	)
	out = append(out, lw.lines...)
	out = append(out, "halt")
	return strings.Join(out, "\n") + "\n", nil
}

// --- low-level emission -------------------------------------------------

func (lw *Lowerer) do(cmd string, args ...string) {
	lw.lines = append(lw.lines, cmd+" "+strings.Join(args, ", "))
}

func (lw *Lowerer) label(name string) {
	lw.lines = append(lw.lines, name+":")
}

func (lw *Lowerer) li(reg, value string) {
	lw.do("li", reg, value)
}

func (lw *Lowerer) liInt(reg string, value int) {
	lw.li(reg, strconv.Itoa(value))
}

// cp copies src into dest via `add dest, zero, src`; SLIM has no dedicated
// move instruction.
func (lw *Lowerer) cp(dest, src string) {
	lw.do("add", dest, zero, src)
}

func (lw *Lowerer) push(src string) {
	lw.do("st", src, stackPointer)
	lw.do("add", stackPointer, stackPointer, one)
}

func (lw *Lowerer) pop(dest string) {
	lw.do("sub", stackPointer, stackPointer, one)
	lw.do("ld", dest, stackPointer)
}

// jTo jumps unconditionally to a label, loading it into jump-label first
// since `j`'s operand is always a register.
func (lw *Lowerer) jTo(target string) {
	lw.li(jumpLabel, target)
	lw.do("j", jumpLabel)
}

// jeqzTo jumps to target when src holds zero.
func (lw *Lowerer) jeqzTo(src, target string) {
	lw.li(jumpLabel, target)
	lw.do("jeqz", src, jumpLabel)
}

func (lw *Lowerer) addLabel(prefix string) string {
	lw.labelCounts[prefix]++
	return fmt.Sprintf("%s-%d", prefix, lw.labelCounts[prefix])
}

func (lw *Lowerer) getFuncLabel(name string) string {
	return "def-" + name
}

func (lw *Lowerer) local(n int) string {
	name := fmt.Sprintf("local-%d", n)
	lw.registers[name] = true
	return name
}

func (lw *Lowerer) arg(n int) string {
	name := fmt.Sprintf("arg-%d", n)
	lw.registers[name] = true
	return name
}

// addArg returns a fresh arg-k register for evaluating one operand of a
// nested expression and extends the live arg depth; remArg gives it back.
// This mirrors the original compiler's arg_count counter — it is a depth,
// not a stack of distinct names.
func (lw *Lowerer) addArg() string {
	name := lw.arg(lw.argCount)
	lw.argCount++
	return name
}

func (lw *Lowerer) remArg() {
	lw.argCount--
}

func (lw *Lowerer) getLocalNamespace() *namespace {
	ns, ok := lw.namespaces[lw.scope]
	if !ok {
		ns = &namespace{names: map[string]string{}}
		lw.namespaces[lw.scope] = ns
	}
	return ns
}

// getOrCreateName returns the register backing name in the current scope,
// allocating a new local-k slot the first time the name is assigned.
func (lw *Lowerer) getOrCreateName(name string) string {
	ns := lw.getLocalNamespace()
	if reg, ok := ns.names[name]; ok {
		return reg
	}
	reg := lw.local(ns.localCount)
	ns.localCount++
	ns.names[name] = reg
	return reg
}

func (lw *Lowerer) lookupName(name string) (string, bool) {
	ns := lw.getLocalNamespace()
	reg, ok := ns.names[name]
	return reg, ok
}

// --- statements ----------------------------------------------------------

func (lw *Lowerer) lowerStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Assign:
		return lw.lowerAssign(n)
	case *ast.AugAssign:
		return lw.lowerAugAssign(n)
	case *ast.If:
		return lw.lowerIf(n)
	case *ast.While:
		return lw.lowerWhile(n)
	case *ast.FuncDef:
		return lw.lowerFuncDef(n)
	case *ast.Return:
		return lw.lowerReturn(n)
	case *ast.Break:
		if len(lw.breakLabels) == 0 {
			return newError(n.Line(), "break outside loop")
		}
		lw.jTo(lw.breakLabels[len(lw.breakLabels)-1])
		return nil
	case *ast.Continue:
		if len(lw.continueLabels) == 0 {
			return newError(n.Line(), "continue outside loop")
		}
		lw.jTo(lw.continueLabels[len(lw.continueLabels)-1])
		return nil
	case *ast.ExprStmt:
		return lw.lowerExpr(n.Value)
	default:
		return newError(s.Line(), fmt.Sprintf("unsupported statement %T", s))
	}
}

func (lw *Lowerer) lowerAssign(n *ast.Assign) error {
	if err := lw.lowerExpr(n.Value); err != nil {
		return err
	}
	reg := lw.getOrCreateName(n.Name)
	lw.cp(reg, result)
	return nil
}

func augOpcode(op ast.AugOp) string {
	switch op {
	case ast.AugAdd:
		return "add"
	case ast.AugSub:
		return "sub"
	case ast.AugMul:
		return "mul"
	case ast.AugFloorDiv:
		return "div"
	case ast.AugMod:
		return "rem"
	default:
		return ""
	}
}

func (lw *Lowerer) lowerAugAssign(n *ast.AugAssign) error {
	if err := lw.lowerExpr(n.Value); err != nil {
		return err
	}
	reg, ok := lw.lookupName(n.Name)
	if !ok {
		return newError(n.Line(), fmt.Sprintf("unknown name: %s", n.Name))
	}
	opcode := augOpcode(n.Op)
	if opcode == "" {
		return newError(n.Line(), "unsupported augmented assignment operator")
	}
	lw.do(opcode, reg, reg, result)
	return nil
}

func (lw *Lowerer) lowerIf(n *ast.If) error {
	if err := lw.lowerExpr(n.Test); err != nil {
		return err
	}
	falseLabel := lw.addLabel("else")
	endLabel := lw.addLabel("end-if")
	lw.jeqzTo(result, falseLabel)
	for _, s := range n.Body {
		if err := lw.lowerStmt(s); err != nil {
			return err
		}
	}
	lw.jTo(endLabel)
	lw.label(falseLabel)
	for _, s := range n.Else {
		if err := lw.lowerStmt(s); err != nil {
			return err
		}
	}
	lw.label(endLabel)
	return nil
}

func (lw *Lowerer) lowerWhile(n *ast.While) error {
	startLabel := lw.addLabel("start-while")
	endLabel := lw.addLabel("end-while")
	lw.continueLabels = append(lw.continueLabels, startLabel)
	lw.breakLabels = append(lw.breakLabels, endLabel)

	lw.label(startLabel)
	if err := lw.lowerExpr(n.Test); err != nil {
		return err
	}
	lw.jeqzTo(result, endLabel)
	for _, s := range n.Body {
		if err := lw.lowerStmt(s); err != nil {
			return err
		}
	}
	lw.jTo(startLabel)
	lw.label(endLabel)

	lw.continueLabels = lw.continueLabels[:len(lw.continueLabels)-1]
	lw.breakLabels = lw.breakLabels[:len(lw.breakLabels)-1]
	return nil
}

func (lw *Lowerer) lowerFuncDef(n *ast.FuncDef) error {
	funcLabel := lw.getFuncLabel(n.Name)
	endLabel := lw.addLabel("end-" + n.Name)

	lw.jTo(endLabel)
	lw.label(funcLabel)

	lw.scope = n.Name
	for _, param := range n.Params {
		lw.getOrCreateName(param)
	}
	for _, s := range n.Body {
		if err := lw.lowerStmt(s); err != nil {
			lw.scope = mainScope
			return err
		}
	}
	lw.scope = mainScope

	lw.pop(jumpLabel)
	lw.do("j", jumpLabel)
	lw.label(endLabel)
	return nil
}

func (lw *Lowerer) lowerReturn(n *ast.Return) error {
	if err := lw.lowerExpr(n.Value); err != nil {
		return err
	}
	lw.pop(jumpLabel)
	lw.do("j", jumpLabel)
	return nil
}

// --- expressions -----------------------------------------------------------

func (lw *Lowerer) lowerExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntLit:
		lw.liInt(result, int(n.Value))
		return nil
	case *ast.Name:
		reg, ok := lw.lookupName(n.Name)
		if !ok {
			return newError(n.Line(), fmt.Sprintf("unknown name: %s", n.Name))
		}
		lw.cp(result, reg)
		return nil
	case *ast.UnaryOp:
		return lw.lowerUnaryOp(n)
	case *ast.BinOp:
		return lw.lowerBinOp(n)
	case *ast.Compare:
		return lw.lowerCompare(n)
	case *ast.BoolOp:
		return lw.lowerBoolOp(n)
	case *ast.Call:
		return lw.lowerCall(n)
	case *ast.NamedExpr:
		if err := lw.lowerExpr(n.Value); err != nil {
			return err
		}
		reg := lw.getOrCreateName(n.Name)
		lw.cp(reg, result)
		return nil
	default:
		return newError(e.Line(), fmt.Sprintf("unsupported expression %T", e))
	}
}

func (lw *Lowerer) lowerUnaryOp(n *ast.UnaryOp) error {
	if err := lw.lowerExpr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case ast.UnaryPlus:
		// no-op: result already holds the operand's value.
	case ast.UnaryMinus:
		lw.do("sub", result, zero, result)
	case ast.UnaryNot:
		lw.do("seq", result, zero, result)
	default:
		return newError(n.Line(), "unsupported unary operator")
	}
	return nil
}

func binOpcode(op ast.BinOpKind) string {
	switch op {
	case ast.BinAdd:
		return "add"
	case ast.BinSub:
		return "sub"
	case ast.BinMul:
		return "mul"
	case ast.BinFloorDiv:
		return "div"
	case ast.BinMod:
		return "rem"
	default:
		return ""
	}
}

func (lw *Lowerer) lowerBinOp(n *ast.BinOp) error {
	if err := lw.lowerExpr(n.Left); err != nil {
		return err
	}
	saved := lw.addArg()
	lw.cp(saved, result)
	if err := lw.lowerExpr(n.Right); err != nil {
		return err
	}
	opcode := binOpcode(n.Op)
	if opcode == "" {
		return newError(n.Line(), "unsupported binary operator")
	}
	lw.do(opcode, result, saved, result)
	lw.remArg()
	return nil
}

func compareOpcode(op ast.CompareOpKind) string {
	switch op {
	case ast.CmpEq:
		return "seq"
	case ast.CmpNotEq:
		return "sne"
	case ast.CmpLt:
		return "slt"
	case ast.CmpGt:
		return "sgt"
	case ast.CmpLtE:
		return "sle"
	case ast.CmpGtE:
		return "sge"
	default:
		return ""
	}
}

func (lw *Lowerer) lowerCompare(n *ast.Compare) error {
	if err := lw.lowerExpr(n.Left); err != nil {
		return err
	}
	saved := lw.addArg()
	lw.cp(saved, result)
	if err := lw.lowerExpr(n.Right); err != nil {
		return err
	}
	opcode := compareOpcode(n.Op)
	if opcode == "" {
		return newError(n.Line(), "unsupported comparison operator")
	}
	lw.do(opcode, result, saved, result)
	lw.remArg()
	return nil
}

func (lw *Lowerer) lowerBoolOp(n *ast.BoolOp) error {
	if err := lw.lowerExpr(n.Left); err != nil {
		return err
	}
	endLabel := lw.addLabel("boolop-end")
	switch n.Op {
	case ast.BoolAnd:
		lw.jeqzTo(result, endLabel)
		if err := lw.lowerExpr(n.Right); err != nil {
			return err
		}
	case ast.BoolOr:
		nextLabel := lw.addLabel("boolop-next")
		lw.jeqzTo(result, nextLabel)
		lw.jTo(endLabel)
		lw.label(nextLabel)
		if err := lw.lowerExpr(n.Right); err != nil {
			return err
		}
	default:
		return newError(n.Line(), "unsupported boolean operator")
	}
	lw.label(endLabel)
	return nil
}

func (lw *Lowerer) lowerCall(n *ast.Call) error {
	switch n.Kind {
	case ast.CallPrint:
		inner, ok := n.Args[0].(*ast.Call)
		if !ok || inner.Kind != ast.CallInt {
			return newError(n.Line(), "print() argument must be int(...)")
		}
		if err := lw.lowerIntArg(inner); err != nil {
			return err
		}
		lw.do("write", result)
		return nil
	case ast.CallInt:
		return lw.lowerIntArg(n)
	case ast.CallInput:
		lw.do("read", result)
		return nil
	case ast.CallUser:
		return lw.lowerUserCall(n)
	default:
		return newError(n.Line(), "unsupported call")
	}
}

// lowerIntArg lowers the argument of an int(...) call. int(input()) reads
// a line straight into result; any other argument is evaluated normally,
// since every value in this language is already an integer.
func (lw *Lowerer) lowerIntArg(n *ast.Call) error {
	arg := n.Args[0]
	if inner, ok := arg.(*ast.Call); ok && inner.Kind == ast.CallInput {
		lw.do("read", result)
		return nil
	}
	return lw.lowerExpr(arg)
}

// lowerUserCall implements the call convention: push every live arg-k and
// every local the caller's current scope has allocated so far, push a
// return label, copy evaluated arguments into the callee's local-i slots,
// jump to the function body, then unwind in the reverse order.
func (lw *Lowerer) lowerUserCall(n *ast.Call) error {
	returnLabel := lw.addLabel("return")
	funcLabel := lw.getFuncLabel(n.Func)

	for i := 0; i < lw.argCount; i++ {
		lw.push(lw.arg(i))
	}
	ns := lw.getLocalNamespace()
	localCount := ns.localCount
	for i := 0; i < localCount; i++ {
		lw.push(lw.local(i))
	}

	lw.li(jumpLabel, returnLabel)
	lw.push(jumpLabel)

	for i, argExpr := range n.Args {
		if err := lw.lowerExpr(argExpr); err != nil {
			return err
		}
		lw.cp(lw.local(i), result)
	}

	lw.jTo(funcLabel)
	lw.label(returnLabel)

	for i := localCount - 1; i >= 0; i-- {
		lw.pop(lw.local(i))
	}
	for i := lw.argCount - 1; i >= 0; i-- {
		lw.pop(lw.arg(i))
	}
	return nil
}
