package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinglish-lang/hpc/pkg/ast"
	"github.com/hinglish-lang/hpc/pkg/token"
)

// ignorePositions diffs AST nodes structurally without tripping on source
// position bookkeeping, which every node carries but which isn't the thing
// under test here.
var ignorePositions = cmpopts.IgnoreFields(token.Position{}, "Line", "Column")

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := New(src).Parse()
	require.NoError(t, err)
	require.NotNil(t, program)
	return program
}

func TestVarDeclaration(t *testing.T) {
	program := parseOK(t, "ank x = 5;")
	require.Len(t, program.Statements, 1)
	decl, ok := program.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, ast.TypeInt, decl.DeclaredType)
	assert.Equal(t, "x", decl.Name)
	lit, ok := decl.Initializer.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "5", lit.Value)
}

func TestVarDeclarationWithoutInitializer(t *testing.T) {
	program := parseOK(t, "vakya name;")
	decl := program.Statements[0].(*ast.VarDecl)
	assert.Equal(t, ast.TypeString, decl.DeclaredType)
	assert.Nil(t, decl.Initializer)
}

func TestFuncDeclaration(t *testing.T) {
	program := parseOK(t, "vidhi add(ank a, ank b) ank { wapas a + b; }")
	fn, ok := program.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, ast.TypeInt, fn.Params[0].DeclaredType)
	assert.True(t, fn.HasReturnType)
	assert.Equal(t, ast.TypeInt, fn.ReturnType)
	require.Len(t, fn.Body.Statements, 1)
}

func TestFuncDeclarationWithoutReturnType(t *testing.T) {
	program := parseOK(t, "vidhi greet() { likho(\"hi\"); }")
	fn := program.Statements[0].(*ast.FuncDecl)
	assert.False(t, fn.HasReturnType)
}

func TestIfElse(t *testing.T) {
	program := parseOK(t, "agar (x == 1) { likho(x); } nahi_to { likho(0); }")
	ifStmt, ok := program.Statements[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	program := parseOK(t, "agar (x) agar (y) likho(1); nahi_to likho(2);")
	outer := program.Statements[0].(*ast.If)
	inner, ok := outer.Then.(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, inner.Else)
	assert.Nil(t, outer.Else)
}

func TestWhileLoop(t *testing.T) {
	program := parseOK(t, "jabtak (x < 10) { x = x + 1; }")
	_, ok := program.Statements[0].(*ast.While)
	assert.True(t, ok)
}

func TestForLoopAllClauses(t *testing.T) {
	program := parseOK(t, "karo (ank i = 0; i < 10; i = i + 1) { likho(i); }")
	forStmt, ok := program.Statements[0].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Incr)
}

func TestForLoopOmittedClauses(t *testing.T) {
	program := parseOK(t, "karo (;;) { likho(1); }")
	forStmt := program.Statements[0].(*ast.For)
	assert.Nil(t, forStmt.Cond)
	assert.Nil(t, forStmt.Incr)
}

func TestOperatorPrecedence(t *testing.T) {
	program := parseOK(t, "ank x = 1 + 2 * 3;")
	decl := program.Statements[0].(*ast.VarDecl)
	bin, ok := decl.Initializer.(*ast.Binary)
	require.True(t, ok)
	_, leftIsLiteral := bin.Left.(*ast.Literal)
	assert.True(t, leftIsLiteral)
	right, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "2", right.Left.(*ast.Literal).Value)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	program := parseOK(t, "x = y = 1;")
	stmt := program.Statements[0].(*ast.ExpressionStmt)
	assign, ok := stmt.Expr.(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Target)
	_, ok = assign.Value.(*ast.Assignment)
	assert.True(t, ok)
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, err := New("1 + 2 = 3;").Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target")
}

func TestCallExpression(t *testing.T) {
	program := parseOK(t, "likho(add(1, 2));")
	stmt := program.Statements[0].(*ast.PrintStmt)
	call, ok := stmt.Expr.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestMissingSemicolonIsParseError(t *testing.T) {
	_, err := New("ank x = 5").Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expect ';'")
}

func TestUnexpectedLikhoAsExpression(t *testing.T) {
	_, err := New("ank x = likho;").Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected 'likho'")
}

func TestBinaryExpressionShapeMatchesExpectedTree(t *testing.T) {
	program := parseOK(t, "ank x = 1 + 2;")
	decl := program.Statements[0].(*ast.VarDecl)

	want := &ast.Binary{
		Left:  &ast.Literal{Kind: ast.IntLit, Value: "1"},
		Right: &ast.Literal{Kind: ast.IntLit, Value: "2"},
		Op:    token.Plus,
	}
	if diff := cmp.Diff(want, decl.Initializer, ignorePositions); diff != "" {
		t.Errorf("binary expression tree mismatch (-want +got):\n%s", diff)
	}
}

func TestReturnStatementOptionalValue(t *testing.T) {
	program := parseOK(t, "vidhi f() { wapas; }")
	fn := program.Statements[0].(*ast.FuncDecl)
	ret := fn.Body.Statements[0].(*ast.Return)
	assert.Nil(t, ret.Value)
}
