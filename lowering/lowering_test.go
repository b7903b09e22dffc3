package lowering_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/worm/ast"
	"github.com/lookbusy1344/worm/lowering"
)

// TestLower_SimpleAssignAndArithmetic asserts the emitted SLIM text
// exactly, including register allocation order, for a program with no
// labels or calls to keep the expected output fully deterministic:
//
//	x = 5
//	y = x + 1
//	print(int(y))
func TestLower_SimpleAssignAndArithmetic(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewAssign(1, "x", ast.NewIntLit(1, 5)),
		ast.NewAssign(2, "y", ast.NewBinOp(2, ast.BinAdd, ast.NewName(2, "x"), ast.NewIntLit(2, 1))),
		ast.NewExprStmt(3, ast.NewCall(3, ast.CallPrint, "print", []ast.Expr{
			ast.NewCall(3, ast.CallInt, "int", []ast.Expr{ast.NewName(3, "y")}),
		})),
	}}

	got, err := lowering.Lower(mod)
	require.NoError(t, err)

	want := strings.Join([]string{
		"allocate-registers arg-0, jump-label, local-0, local-1, one, result, stack-pointer, zero",
		"li zero, 0",
		"li one, 1",
		"li stack-pointer, 0",
		"li result, 5",
		"add local-0, zero, result",
		"add result, zero, local-0",
		"add arg-0, zero, result",
		"li result, 1",
		"add result, arg-0, result",
		"add local-1, zero, result",
		"add result, zero, local-1",
		"write result",
		"halt",
	}, "\n") + "\n"

	assert.Equal(t, want, got)
}

// TestLower_FunctionCallRoundTrip hand-verifies that a call into a
// one-parameter function pushes and pops only the return label (the
// module scope has no locals or live args at the call site) and
// that the module scope's first local slot (local-0) safely aliases the
// callee's parameter slot, since x isn't assigned until after the call
// returns:
//
//	def f(n):
//	    return n
//	x = f(5)
//	print(int(x))
func TestLower_FunctionCallRoundTrip(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewFuncDef(1, "f", []string{"n"}, []ast.Stmt{
			ast.NewReturn(2, ast.NewName(2, "n")),
		}),
		ast.NewAssign(3, "x", ast.NewCall(3, ast.CallUser, "f", []ast.Expr{ast.NewIntLit(3, 5)})),
		ast.NewExprStmt(4, ast.NewCall(4, ast.CallPrint, "print", []ast.Expr{
			ast.NewCall(4, ast.CallInt, "int", []ast.Expr{ast.NewName(4, "x")}),
		})),
	}}

	got, err := lowering.Lower(mod)
	require.NoError(t, err)

	want := strings.Join([]string{
		"allocate-registers jump-label, local-0, one, result, stack-pointer, zero",
		"li zero, 0",
		"li one, 1",
		"li stack-pointer, 0",
		"li jump-label, end-f-1",
		"j jump-label",
		"def-f:",
		"add result, zero, local-0",
		"sub stack-pointer, stack-pointer, one",
		"ld jump-label, stack-pointer",
		"j jump-label",
		"sub stack-pointer, stack-pointer, one",
		"ld jump-label, stack-pointer",
		"j jump-label",
		"end-f-1:",
		"li jump-label, return-1",
		"st jump-label, stack-pointer",
		"add stack-pointer, stack-pointer, one",
		"li result, 5",
		"add local-0, zero, result",
		"li jump-label, def-f",
		"j jump-label",
		"return-1:",
		"add local-0, zero, result",
		"add result, zero, local-0",
		"write result",
		"halt",
	}, "\n") + "\n"

	assert.Equal(t, want, got)
}

func TestLower_AugAssign(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewAssign(1, "x", ast.NewIntLit(1, 1)),
		ast.NewAugAssign(2, "x", ast.AugAdd, ast.NewIntLit(2, 2)),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "add local-0, local-0, result")
}

func TestLower_AugAssignUnknownNameFails(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewAugAssign(1, "x", ast.AugAdd, ast.NewIntLit(1, 2)),
	}}
	_, err := lowering.Lower(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown name")
}

func TestLower_UnaryOperators(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewAssign(1, "a", ast.NewUnaryOp(1, ast.UnaryMinus, ast.NewIntLit(1, 3))),
		ast.NewAssign(2, "b", ast.NewUnaryOp(2, ast.UnaryNot, ast.NewIntLit(2, 0))),
		ast.NewAssign(3, "c", ast.NewUnaryOp(3, ast.UnaryPlus, ast.NewIntLit(3, 3))),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "sub result, zero, result")
	assert.Contains(t, got, "seq result, zero, result")
}

func TestLower_BoolOpAndShortCircuits(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewExprStmt(1, ast.NewBoolOp(1, ast.BoolAnd, ast.NewIntLit(1, 0), ast.NewIntLit(1, 1))),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "boolop-end-1:")
	// `and`'s right side is only reached by falling through the jeqz, no
	// extra unconditional jump is needed the way `or` requires.
	lines := strings.Split(got, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "jeqz") {
			assert.Contains(t, lines[i+1], "li result, 1")
		}
	}
}

func TestLower_BoolOpOrShortCircuits(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewExprStmt(1, ast.NewBoolOp(1, ast.BoolOr, ast.NewIntLit(1, 1), ast.NewIntLit(1, 0))),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "boolop-next-1:")
	assert.Contains(t, got, "boolop-end-1:")
}

func TestLower_IfElseShape(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewIf(1, ast.NewIntLit(1, 1),
			[]ast.Stmt{ast.NewAssign(2, "a", ast.NewIntLit(2, 1))},
			[]ast.Stmt{ast.NewAssign(3, "a", ast.NewIntLit(3, 2))},
		),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "else-1:")
	assert.Contains(t, got, "end-if-1:")
}

func TestLower_WhileWithBreakAndContinue(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewWhile(1, ast.NewIntLit(1, 1), []ast.Stmt{
			ast.NewBreak(2),
			ast.NewContinue(3),
		}),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "start-while-1:")
	assert.Contains(t, got, "end-while-1:")
}

func TestLower_BreakOutsideLoopFails(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{ast.NewBreak(1)}}
	_, err := lowering.Lower(mod)
	require.Error(t, err)
}

func TestLower_ContinueOutsideLoopFails(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{ast.NewContinue(1)}}
	_, err := lowering.Lower(mod)
	require.Error(t, err)
}

func TestLower_PrintWithoutIntWrapperFails(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewExprStmt(1, ast.NewCall(1, ast.CallPrint, "print", []ast.Expr{ast.NewIntLit(1, 1)})),
	}}
	_, err := lowering.Lower(mod)
	require.Error(t, err)
}

func TestLower_NamedExprAssignsAndLeavesValueInResult(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewExprStmt(1, ast.NewNamedExpr(1, "x", ast.NewIntLit(1, 7))),
		ast.NewExprStmt(2, ast.NewCall(2, ast.CallPrint, "print", []ast.Expr{
			ast.NewCall(2, ast.CallInt, "int", []ast.Expr{ast.NewName(2, "x")}),
		})),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "li result, 7\nadd local-0, zero, result\n")
	assert.Contains(t, got, "write result")
}

func TestLower_IntOfInputEmitsRead(t *testing.T) {
	mod := &ast.Module{Body: []ast.Stmt{
		ast.NewAssign(1, "x", ast.NewCall(1, ast.CallInt, "int", []ast.Expr{
			ast.NewCall(1, ast.CallInput, "input", nil),
		})),
	}}
	got, err := lowering.Lower(mod)
	require.NoError(t, err)
	assert.Contains(t, got, "read result")
}

func TestLower_TooManyRegistersOverflows(t *testing.T) {
	body := make([]ast.Stmt, 0, 40)
	for i := 0; i < 40; i++ {
		name := "v" + string(rune('a'+i))
		body = append(body, ast.NewAssign(1, name, ast.NewIntLit(1, int32(i))))
	}
	mod := &ast.Module{Body: body}
	_, err := lowering.Lower(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
}
