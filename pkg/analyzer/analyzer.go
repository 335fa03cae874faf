// Package analyzer implements the semantic analysis pass: scope resolution,
// type checking, and AST annotation.
//
// The analyzer walks the AST with one visit method per node kind, in the
// style of a classic tree-walking checker: statements are visited for their
// side effects on the symbol table and the diagnostic bag, expressions are
// visited for their inferred ast.Type. Unlike the parser, the analyzer does
// not stop at the first problem — it keeps walking so a single run reports
// every error it can find, and recovers from a bad subexpression by typing
// it ast.TypeUnknown so the error doesn't cascade into spurious follow-on
// diagnostics.
package analyzer

import (
	"github.com/hinglish-lang/hpc/pkg/ast"
	"github.com/hinglish-lang/hpc/pkg/diag"
	"github.com/hinglish-lang/hpc/pkg/symtable"
	"github.com/hinglish-lang/hpc/pkg/token"
)

// Analyzer performs a single semantic analysis pass over a Program.
type Analyzer struct {
	table *symtable.Table
	bag   diag.Bag

	currentFunc *ast.FuncDecl
}

// New creates an Analyzer ready to run.
func New() *Analyzer {
	return &Analyzer{table: symtable.New()}
}

// Analyze walks program, annotating it in place. It returns a non-nil error
// wrapping diag.ErrAnalysis if any error-severity diagnostic was raised.
func (a *Analyzer) Analyze(program *ast.Program) error {
	a.declareFunctionSignatures(program)

	for _, stmt := range program.Statements {
		a.visitStatement(stmt)
	}
	return a.bag.Join(diag.ErrAnalysis)
}

// Diagnostics returns every diagnostic raised during Analyze, including
// warnings, regardless of whether Analyze returned an error.
func (a *Analyzer) Diagnostics() []diag.Diagnostic {
	return a.bag.All()
}

// declareFunctionSignatures performs a forward pass registering every
// top-level function's signature before any body is checked, so calls to
// functions declared later in the file (and recursive calls) resolve.
func (a *Analyzer) declareFunctionSignatures(program *ast.Program) {
	for _, stmt := range program.Statements {
		fn, ok := stmt.(*ast.FuncDecl)
		if !ok {
			continue
		}
		returnType := fn.ReturnType
		if fn.Name == "main" {
			// main always compiles to `int main(...)` in C regardless of
			// what the source declares.
			returnType = ast.TypeInt
		} else if !fn.HasReturnType {
			returnType = ast.TypeVoid
		}
		// Normalize the node itself so every later pass (return-type
		// checking here, C signature emission in the emitter) reads one
		// settled value instead of re-deriving the main special case.
		fn.ReturnType = returnType
		fn.HasReturnType = true

		params := make([]ast.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.DeclaredType
		}

		sig := symtable.FuncSignature{Name: fn.Name, Params: params, ReturnType: returnType}
		if !a.table.DefineFunc(sig) {
			a.bag.Add(diag.At(fn.Position, "function '%s' is already declared", fn.Name))
		}
	}
}

// ---- Statements -------------------------------------------------------------

func (a *Analyzer) visitStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		a.visitVarDecl(s)
	case *ast.FuncDecl:
		a.visitFuncDecl(s)
	case *ast.Block:
		a.table.EnterScope()
		for _, inner := range s.Statements {
			a.visitStatement(inner)
		}
		a.table.ExitScope()
	case *ast.If:
		a.checkBoolean(a.visitExpression(s.Cond), s.Cond.Pos(), "agar")
		a.visitStatement(s.Then)
		if s.Else != nil {
			a.visitStatement(s.Else)
		}
	case *ast.While:
		a.checkBoolean(a.visitExpression(s.Cond), s.Cond.Pos(), "jabtak")
		a.visitStatement(s.Body)
	case *ast.For:
		a.table.EnterScope()
		if s.Init != nil {
			a.visitStatement(s.Init)
		}
		if s.Cond != nil {
			a.checkBoolean(a.visitExpression(s.Cond), s.Cond.Pos(), "karo")
		}
		if s.Incr != nil {
			a.visitExpression(s.Incr)
		}
		a.visitStatement(s.Body)
		a.table.ExitScope()
	case *ast.PrintStmt:
		a.visitExpression(s.Expr)
	case *ast.ExpressionStmt:
		a.visitExpression(s.Expr)
	case *ast.Return:
		a.visitReturn(s)
	default:
		a.bag.Add(diag.At(stmt.Pos(), "internal: unhandled statement type %T", stmt))
	}
}

func (a *Analyzer) visitVarDecl(decl *ast.VarDecl) {
	if decl.Initializer != nil {
		initType := a.visitExpression(decl.Initializer)
		if !assignable(decl.DeclaredType, initType) {
			a.bag.Add(diag.At(decl.Position,
				"Cannot assign value of type %s to '%s' of type %s",
				initType, decl.Name, decl.DeclaredType))
		}
	}
	if !a.table.Define(decl.Name, decl.DeclaredType) {
		a.bag.Add(diag.At(decl.Position, "variable '%s' is already declared in this scope", decl.Name))
	}
}

func (a *Analyzer) visitFuncDecl(fn *ast.FuncDecl) {
	prevFunc := a.currentFunc
	a.currentFunc = fn
	defer func() { a.currentFunc = prevFunc }()

	a.table.EnterScope()
	for _, p := range fn.Params {
		if !a.table.Define(p.Name, p.DeclaredType) {
			a.bag.Add(diag.At(p.Position, "parameter '%s' is already declared", p.Name))
		}
	}
	for _, stmt := range fn.Body.Statements {
		a.visitStatement(stmt)
	}
	a.table.ExitScope()
}

func (a *Analyzer) visitReturn(ret *ast.Return) {
	if a.currentFunc == nil {
		a.bag.Add(diag.At(ret.Position, "'wapas' used outside of a function"))
		if ret.Value != nil {
			a.visitExpression(ret.Value)
		}
		return
	}

	expected := a.currentFunc.ReturnType

	if ret.Value == nil {
		if expected != ast.TypeVoid {
			a.bag.Add(diag.At(ret.Position, "function '%s' must return a value of type %s",
				a.currentFunc.Name, expected))
		}
		return
	}

	actual := a.visitExpression(ret.Value)
	if expected == ast.TypeVoid {
		a.bag.Add(diag.At(ret.Position, "function '%s' does not return a value", a.currentFunc.Name))
		return
	}
	if !assignable(expected, actual) {
		a.bag.Add(diag.At(ret.Position, "function '%s' returns %s but value is of type %s",
			a.currentFunc.Name, expected, actual))
	}
}

// ---- Expressions ------------------------------------------------------------

// visitExpression infers and returns the type of expr, annotating Variable
// nodes with their resolved type as a side effect.
func (a *Analyzer) visitExpression(expr ast.Expression) ast.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalType(e)
	case *ast.Variable:
		return a.visitVariable(e)
	case *ast.Grouping:
		return a.visitExpression(e.Expr)
	case *ast.Unary:
		return a.visitUnary(e)
	case *ast.Binary:
		return a.visitBinary(e)
	case *ast.Logical:
		return a.visitLogical(e)
	case *ast.Assignment:
		return a.visitAssignment(e)
	case *ast.Call:
		return a.visitCall(e)
	default:
		a.bag.Add(diag.At(expr.Pos(), "internal: unhandled expression type %T", expr))
		return ast.TypeUnknown
	}
}

func literalType(lit *ast.Literal) ast.Type {
	switch lit.Kind {
	case ast.IntLit:
		return ast.TypeInt
	case ast.FloatLit:
		return ast.TypeFloat
	case ast.StringLit:
		return ast.TypeString
	case ast.CharLit:
		return ast.TypeChar
	default:
		return ast.TypeUnknown
	}
}

func (a *Analyzer) visitVariable(v *ast.Variable) ast.Type {
	sym, ok := a.table.Lookup(v.Name)
	if !ok {
		a.bag.Add(diag.At(v.Position, "Variable '%s' is not defined", v.Name))
		v.ResolvedType = ast.TypeUnknown
		return ast.TypeUnknown
	}
	v.ResolvedType = sym.Type
	return sym.Type
}

func (a *Analyzer) visitUnary(u *ast.Unary) ast.Type {
	operandType := a.visitExpression(u.Operand)
	switch u.Op {
	case token.Minus:
		if !isNumeric(operandType) && operandType != ast.TypeUnknown {
			a.bag.Add(diag.At(u.Position, "unary '-' requires a numeric operand, got %s", operandType))
			return ast.TypeUnknown
		}
		return operandType
	case token.Not:
		a.checkBoolean(operandType, u.Position, "nahi")
		return ast.TypeBoolean
	default:
		a.bag.Add(diag.At(u.Position, "internal: unhandled unary operator %s", u.Op))
		return ast.TypeUnknown
	}
}

func (a *Analyzer) visitBinary(b *ast.Binary) ast.Type {
	leftType := a.visitExpression(b.Left)
	rightType := a.visitExpression(b.Right)

	switch b.Op {
	case token.Equal, token.NotEqual, token.Less, token.Greater, token.LessEq, token.GreaterEq:
		if leftType == ast.TypeUnknown || rightType == ast.TypeUnknown {
			return ast.TypeBoolean
		}
		if !comparable(leftType, rightType) {
			a.bag.Add(diag.At(b.Position, "Cannot compare %s with %s", leftType, rightType))
		}
		return ast.TypeBoolean
	case token.Plus:
		if leftType == ast.TypeString || rightType == ast.TypeString {
			a.bag.Add(diag.At(b.Position, "string concatenation with '+' is not supported"))
			return ast.TypeUnknown
		}
		return a.visitArithmetic(b, leftType, rightType)
	case token.Minus, token.Star, token.Slash, token.Percent:
		return a.visitArithmetic(b, leftType, rightType)
	default:
		a.bag.Add(diag.At(b.Position, "internal: unhandled binary operator %s", b.Op))
		return ast.TypeUnknown
	}
}

func (a *Analyzer) visitArithmetic(b *ast.Binary, leftType, rightType ast.Type) ast.Type {
	if leftType == ast.TypeUnknown || rightType == ast.TypeUnknown {
		return ast.TypeUnknown
	}
	if !isNumeric(leftType) || !isNumeric(rightType) {
		a.bag.Add(diag.At(b.Position, "operator '%s' requires numeric operands, got %s and %s",
			b.Op, leftType, rightType))
		return ast.TypeUnknown
	}
	if leftType == ast.TypeFloat || rightType == ast.TypeFloat {
		return ast.TypeFloat
	}
	return ast.TypeInt
}

func (a *Analyzer) visitLogical(l *ast.Logical) ast.Type {
	leftType := a.visitExpression(l.Left)
	rightType := a.visitExpression(l.Right)
	a.checkBoolean(leftType, l.Left.Pos(), l.Op.String())
	a.checkBoolean(rightType, l.Right.Pos(), l.Op.String())
	return ast.TypeBoolean
}

func (a *Analyzer) visitAssignment(assign *ast.Assignment) ast.Type {
	sym, ok := a.table.Lookup(assign.Target)
	valueType := a.visitExpression(assign.Value)
	if !ok {
		a.bag.Add(diag.At(assign.Position, "Variable '%s' is not defined", assign.Target))
		return ast.TypeUnknown
	}
	if valueType != ast.TypeUnknown && !assignable(sym.Type, valueType) {
		a.bag.Add(diag.At(assign.Position, "Cannot assign value of type %s to '%s' of type %s",
			valueType, assign.Target, sym.Type))
	}
	return sym.Type
}

func (a *Analyzer) visitCall(call *ast.Call) ast.Type {
	name, ok := calleeName(call.Callee)
	if !ok {
		a.bag.Add(diag.At(call.Position, "expression is not callable"))
		for _, arg := range call.Args {
			a.visitExpression(arg)
		}
		return ast.TypeUnknown
	}

	sig, found := a.table.LookupFunc(name)
	argTypes := make([]ast.Type, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = a.visitExpression(arg)
	}

	if !found {
		a.bag.Add(diag.At(call.Position, "call to undeclared function '%s'", name))
		return ast.TypeUnknown
	}

	if len(argTypes) != len(sig.Params) {
		a.bag.Add(diag.At(call.Position, "function '%s' expects %d argument(s), got %d",
			name, len(sig.Params), len(argTypes)))
		return sig.ReturnType
	}

	for i, paramType := range sig.Params {
		if argTypes[i] == ast.TypeUnknown {
			continue
		}
		if !assignable(paramType, argTypes[i]) {
			a.bag.Add(diag.At(call.Args[i].Pos(),
				"argument %d to '%s' has type %s, expected %s",
				i+1, name, argTypes[i], paramType))
		}
	}
	return sig.ReturnType
}

func calleeName(expr ast.Expression) (string, bool) {
	v, ok := expr.(*ast.Variable)
	if !ok {
		return "", false
	}
	return v.Name, true
}

// ---- Type rules -------------------------------------------------------------

func isNumeric(t ast.Type) bool {
	return t == ast.TypeInt || t == ast.TypeFloat
}

// comparable reports whether two operand types may appear on either side of
// an equality or relational operator: numerics compare against numerics,
// everything else must match exactly.
func comparable(a, b ast.Type) bool {
	if isNumeric(a) && isNumeric(b) {
		return true
	}
	return a == b
}

// assignable reports whether a value of type actual may be used where
// expected is required: an exact type match, or the widening int-to-float
// conversion.
func assignable(expected, actual ast.Type) bool {
	if expected == actual {
		return true
	}
	return expected == ast.TypeFloat && actual == ast.TypeInt
}

func (a *Analyzer) checkBoolean(t ast.Type, pos token.Position, context string) {
	if t == ast.TypeUnknown {
		return
	}
	if t != ast.TypeBoolean {
		a.bag.Add(diag.At(pos, "condition for '%s' must be a boolean, got %s", context, t))
	}
}
