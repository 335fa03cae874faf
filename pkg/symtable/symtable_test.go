package symtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinglish-lang/hpc/pkg/ast"
)

func TestDefineAndLookupInGlobalScope(t *testing.T) {
	table := New()
	require.True(t, table.Define("x", ast.TypeInt))

	sym, ok := table.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, ast.TypeInt, sym.Type)
}

func TestRedefineInSameScopeFails(t *testing.T) {
	table := New()
	require.True(t, table.Define("x", ast.TypeInt))
	assert.False(t, table.Define("x", ast.TypeFloat))
}

func TestShadowingInNestedScope(t *testing.T) {
	table := New()
	require.True(t, table.Define("x", ast.TypeInt))

	table.EnterScope()
	require.True(t, table.Define("x", ast.TypeFloat))
	sym, _ := table.Lookup("x")
	assert.Equal(t, ast.TypeFloat, sym.Type)
	table.ExitScope()

	sym, _ = table.Lookup("x")
	assert.Equal(t, ast.TypeInt, sym.Type)
}

func TestLookupMissesAfterExitScope(t *testing.T) {
	table := New()
	table.EnterScope()
	table.Define("y", ast.TypeString)
	table.ExitScope()

	_, ok := table.Lookup("y")
	assert.False(t, ok)
}

func TestFuncSignatureRoundTrip(t *testing.T) {
	table := New()
	sig := FuncSignature{Name: "add", Params: []ast.Type{ast.TypeInt, ast.TypeInt}, ReturnType: ast.TypeInt}
	require.True(t, table.DefineFunc(sig))

	got, ok := table.LookupFunc("add")
	require.True(t, ok)
	assert.Equal(t, sig, got)

	assert.False(t, table.DefineFunc(sig))
}
