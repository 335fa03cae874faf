// Package symtable implements the lexically-scoped symbol table used by the
// analyzer to resolve variable and function names.
//
// Scopes are a LIFO stack of frames: entering a block pushes a frame,
// leaving one pops it, and lookups walk the stack from the innermost frame
// outward. Functions live in
// a separate flat table, since the language has no nested function
// declarations and recursion/forward calls both require every function name
// to be visible from every function body.
package symtable

import "github.com/hinglish-lang/hpc/pkg/ast"

// Symbol is a declared variable's type, recorded at the point of
// declaration.
type Symbol struct {
	Name string
	Type ast.Type
}

// FuncSignature records a function's parameter types and return type, used
// by the analyzer to check call arity and argument types.
type FuncSignature struct {
	Name       string
	Params     []ast.Type
	ReturnType ast.Type
}

type scope map[string]Symbol

// Table is the analyzer's symbol table: a stack of variable scopes plus a
// flat table of function signatures.
type Table struct {
	scopes []scope
	funcs  map[string]FuncSignature
}

// New creates a Table with a single global scope.
func New() *Table {
	return &Table{
		scopes: []scope{make(scope)},
		funcs:  make(map[string]FuncSignature),
	}
}

// EnterScope pushes a new, empty block scope.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, make(scope))
}

// ExitScope pops the innermost block scope. It is a no-op if only the
// global scope remains, which should not happen in correct analyzer usage.
func (t *Table) ExitScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Define declares name with typ in the innermost scope. It returns false if
// name is already declared in that same scope (a redeclaration error, not a
// shadowing one — shadowing a name from an outer scope is permitted).
func (t *Table) Define(name string, typ ast.Type) bool {
	current := t.scopes[len(t.scopes)-1]
	if _, exists := current[name]; exists {
		return false
	}
	current[name] = Symbol{Name: name, Type: typ}
	return true
}

// Lookup searches for name starting at the innermost scope and working
// outward to the global scope.
func (t *Table) Lookup(name string) (Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// DefineFunc registers a function signature. It returns false if a function
// with that name is already registered.
func (t *Table) DefineFunc(sig FuncSignature) bool {
	if _, exists := t.funcs[sig.Name]; exists {
		return false
	}
	t.funcs[sig.Name] = sig
	return true
}

// LookupFunc finds a registered function signature by name.
func (t *Table) LookupFunc(name string) (FuncSignature, bool) {
	sig, ok := t.funcs[name]
	return sig, ok
}

// Depth reports the current scope nesting depth (1 for the global scope
// alone).
func (t *Table) Depth() int {
	return len(t.scopes)
}
