// Package emitter translates an analyzed AST into C source text. It assumes
// the tree has already passed analyzer.Analyze: Variable
// nodes carry a resolved type, every FuncDecl carries a settled return type
// (main normalized to ank), and no remaining expression can be ill-typed.
package emitter

import (
	"fmt"
	"strings"

	"github.com/hinglish-lang/hpc/pkg/ast"
	"github.com/hinglish-lang/hpc/pkg/diag"
	"github.com/hinglish-lang/hpc/pkg/token"
)

const indentUnit = "    "

// Emitter renders a Program as C source text.
type Emitter struct {
	out    strings.Builder
	indent int
}

// New creates an Emitter.
func New() *Emitter {
	return &Emitter{}
}

// Emit renders program as a complete C translation unit. It wraps any
// internal inconsistency (an unresolved type slipping through analysis) in
// diag.ErrEmit rather than panicking, since the driver treats emission as
// just another pipeline phase.
func Emit(program *ast.Program) (string, error) {
	e := New()
	if err := e.emitPreamble(); err != nil {
		return "", err
	}
	for _, stmt := range program.Statements {
		if err := e.emitTopLevel(stmt); err != nil {
			return "", err
		}
	}
	return e.out.String(), nil
}

func (e *Emitter) writeln(format string, args ...any) {
	e.out.WriteString(strings.Repeat(indentUnit, e.indent))
	fmt.Fprintf(&e.out, format, args...)
	e.out.WriteByte('\n')
}

func (e *Emitter) emitPreamble() error {
	e.writeln("#include <stdio.h>")
	e.writeln("#include <stdlib.h>")
	e.writeln("#include <string.h>")
	e.out.WriteByte('\n')
	return nil
}

func (e *Emitter) emitTopLevel(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.FuncDecl:
		return e.emitFuncDecl(s)
	case *ast.VarDecl:
		return e.emitVarDecl(s)
	default:
		return e.emitStatement(stmt)
	}
}

// cType maps a source type to its C spelling.
func cType(t ast.Type) (string, error) {
	switch t {
	case ast.TypeInt:
		return "int", nil
	case ast.TypeFloat:
		return "float", nil
	case ast.TypeString:
		return "char*", nil
	case ast.TypeChar:
		return "char", nil
	case ast.TypeVoid:
		return "void", nil
	default:
		return "", fmt.Errorf("%w: cannot translate type %s to C", diag.ErrEmit, t)
	}
}

func (e *Emitter) emitFuncDecl(fn *ast.FuncDecl) error {
	retType, err := cType(fn.ReturnType)
	if err != nil {
		return err
	}

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		pType, err := cType(p.DeclaredType)
		if err != nil {
			return err
		}
		params[i] = fmt.Sprintf("%s %s", pType, p.Name)
	}
	if len(params) == 0 {
		params = []string{"void"}
	}

	e.writeln("%s %s(%s) {", retType, fn.Name, strings.Join(params, ", "))
	e.indent++
	for _, stmt := range fn.Body.Statements {
		if err := e.emitStatement(stmt); err != nil {
			return err
		}
	}
	if fn.Name == "main" && !hasTopLevelReturn(fn.Body) {
		e.writeln("return 0;")
	}
	e.indent--
	e.writeln("}")
	e.out.WriteByte('\n')
	return nil
}

func hasTopLevelReturn(block *ast.Block) bool {
	for _, stmt := range block.Statements {
		if _, ok := stmt.(*ast.Return); ok {
			return true
		}
	}
	return false
}

func (e *Emitter) emitStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return e.emitVarDecl(s)
	case *ast.ExpressionStmt:
		expr, err := e.emitExpr(s.Expr)
		if err != nil {
			return err
		}
		e.writeln("%s;", expr)
		return nil
	case *ast.PrintStmt:
		return e.emitPrint(s)
	case *ast.Block:
		e.writeln("{")
		e.indent++
		for _, inner := range s.Statements {
			if err := e.emitStatement(inner); err != nil {
				return err
			}
		}
		e.indent--
		e.writeln("}")
		return nil
	case *ast.If:
		return e.emitIf(s)
	case *ast.While:
		return e.emitWhile(s)
	case *ast.For:
		return e.emitFor(s)
	case *ast.Return:
		return e.emitReturn(s)
	default:
		return fmt.Errorf("%w: cannot emit statement type %T", diag.ErrEmit, stmt)
	}
}

func (e *Emitter) emitVarDecl(decl *ast.VarDecl) error {
	cTyp, err := cType(decl.DeclaredType)
	if err != nil {
		return err
	}
	if decl.Initializer == nil {
		e.writeln("%s %s;", cTyp, decl.Name)
		return nil
	}
	value, err := e.emitExpr(decl.Initializer)
	if err != nil {
		return err
	}
	e.writeln("%s %s = %s;", cTyp, decl.Name, value)
	return nil
}

func (e *Emitter) emitIf(s *ast.If) error {
	cond, err := e.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	e.writeln("if (%s) {", cond)
	e.indent++
	if err := e.emitInBlock(s.Then); err != nil {
		return err
	}
	e.indent--
	if s.Else == nil {
		e.writeln("}")
		return nil
	}
	e.writeln("} else {")
	e.indent++
	if err := e.emitInBlock(s.Else); err != nil {
		return err
	}
	e.indent--
	e.writeln("}")
	return nil
}

// emitInBlock emits a statement that syntactically follows an if/while/for
// header as the body of a brace-delimited block, whether or not the source
// wrote explicit braces — the emitter always normalizes control-flow bodies
// to braced form.
func (e *Emitter) emitInBlock(stmt ast.Statement) error {
	if block, ok := stmt.(*ast.Block); ok {
		for _, inner := range block.Statements {
			if err := e.emitStatement(inner); err != nil {
				return err
			}
		}
		return nil
	}
	return e.emitStatement(stmt)
}

func (e *Emitter) emitWhile(s *ast.While) error {
	cond, err := e.emitExpr(s.Cond)
	if err != nil {
		return err
	}
	e.writeln("while (%s) {", cond)
	e.indent++
	if err := e.emitInBlock(s.Body); err != nil {
		return err
	}
	e.indent--
	e.writeln("}")
	return nil
}

func (e *Emitter) emitFor(s *ast.For) error {
	var initStr, condStr, incrStr string
	var err error

	switch init := s.Init.(type) {
	case nil:
		initStr = ""
	case *ast.VarDecl:
		cTyp, terr := cType(init.DeclaredType)
		if terr != nil {
			return terr
		}
		if init.Initializer != nil {
			value, verr := e.emitExpr(init.Initializer)
			if verr != nil {
				return verr
			}
			initStr = fmt.Sprintf("%s %s = %s", cTyp, init.Name, value)
		} else {
			initStr = fmt.Sprintf("%s %s", cTyp, init.Name)
		}
	case *ast.ExpressionStmt:
		initStr, err = e.emitExpr(init.Expr)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unexpected for-loop initializer %T", diag.ErrEmit, init)
	}

	if s.Cond != nil {
		condStr, err = e.emitExpr(s.Cond)
		if err != nil {
			return err
		}
	}
	if s.Incr != nil {
		incrStr, err = e.emitExpr(s.Incr)
		if err != nil {
			return err
		}
	}

	e.writeln("for (%s; %s; %s) {", initStr, condStr, incrStr)
	e.indent++
	if err := e.emitInBlock(s.Body); err != nil {
		return err
	}
	e.indent--
	e.writeln("}")
	return nil
}

func (e *Emitter) emitReturn(s *ast.Return) error {
	if s.Value == nil {
		e.writeln("return;")
		return nil
	}
	value, err := e.emitExpr(s.Value)
	if err != nil {
		return err
	}
	e.writeln("return %s;", value)
	return nil
}

// ---- Expressions ------------------------------------------------------------

var binaryOps = map[token.Kind]string{
	token.Plus:      "+",
	token.Minus:     "-",
	token.Star:      "*",
	token.Slash:     "/",
	token.Percent:   "%",
	token.Equal:     "==",
	token.NotEqual:  "!=",
	token.Less:      "<",
	token.Greater:   ">",
	token.LessEq:    "<=",
	token.GreaterEq: ">=",
	token.And:       "&&",
	token.Or:        "||",
}

func (e *Emitter) emitExpr(expr ast.Expression) (string, error) {
	switch ex := expr.(type) {
	case *ast.Literal:
		return emitLiteral(ex)
	case *ast.Variable:
		return ex.Name, nil
	case *ast.Grouping:
		inner, err := e.emitExpr(ex.Expr)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case *ast.Unary:
		return e.emitUnary(ex)
	case *ast.Binary:
		return e.emitBinaryLike(ex.Left, ex.Op, ex.Right)
	case *ast.Logical:
		return e.emitBinaryLike(ex.Left, ex.Op, ex.Right)
	case *ast.Assignment:
		value, err := e.emitExpr(ex.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", ex.Target, value), nil
	case *ast.Call:
		return e.emitCall(ex)
	default:
		return "", fmt.Errorf("%w: cannot emit expression type %T", diag.ErrEmit, expr)
	}
}

func emitLiteral(lit *ast.Literal) (string, error) {
	switch lit.Kind {
	case ast.IntLit, ast.FloatLit:
		return lit.Value, nil
	case ast.StringLit:
		return fmt.Sprintf("%q", lit.Value), nil
	case ast.CharLit:
		return "'" + escapeForC(lit.Value) + "'", nil
	default:
		return "", fmt.Errorf("%w: unknown literal kind", diag.ErrEmit)
	}
}

// escapeForC re-escapes a decoded character literal's single rune for C
// source, since the lexer already decoded \n, \t, etc. to their raw bytes.
func escapeForC(decoded string) string {
	if decoded == "" {
		return ""
	}
	switch decoded[0] {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\\':
		return `\\`
	case '\'':
		return `\'`
	default:
		return decoded
	}
}

func (e *Emitter) emitUnary(u *ast.Unary) (string, error) {
	operand, err := e.emitExpr(u.Operand)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case token.Minus:
		return "-" + operand, nil
	case token.Not:
		return "!" + operand, nil
	default:
		return "", fmt.Errorf("%w: unknown unary operator %s", diag.ErrEmit, u.Op)
	}
}

func (e *Emitter) emitBinaryLike(left ast.Expression, op token.Kind, right ast.Expression) (string, error) {
	cOp, ok := binaryOps[op]
	if !ok {
		return "", fmt.Errorf("%w: unknown binary operator %s", diag.ErrEmit, op)
	}
	leftStr, err := e.emitExpr(left)
	if err != nil {
		return "", err
	}
	rightStr, err := e.emitExpr(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", leftStr, cOp, rightStr), nil
}

func (e *Emitter) emitCall(call *ast.Call) (string, error) {
	callee, err := e.emitExpr(call.Callee)
	if err != nil {
		return "", err
	}
	args := make([]string, len(call.Args))
	for i, arg := range call.Args {
		args[i], err = e.emitExpr(arg)
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", ")), nil
}

// ---- likho / printf -----------------------------------------------------

// emitPrint lowers `likho(expr);` to a printf call, selecting a format
// specifier from the expression's inferred display type.
func (e *Emitter) emitPrint(s *ast.PrintStmt) error {
	display, err := e.emitExpr(s.Expr)
	if err != nil {
		return err
	}
	format := formatSpecifier(s.Expr)
	e.writeln(`printf("%s\n", %s);`, format, display)
	return nil
}

// formatSpecifier infers a printf conversion for expr. Variable nodes carry
// an analyzer-resolved type; other expression shapes are inferred
// structurally, falling back to the heuristics generator.py uses when no
// static type is available (name-based hints, then %d).
func formatSpecifier(expr ast.Expression) string {
	switch displayType(expr) {
	case ast.TypeFloat:
		return "%f"
	case ast.TypeString:
		return "%s"
	case ast.TypeChar:
		return "%c"
	default:
		return "%d"
	}
}

func displayType(expr ast.Expression) ast.Type {
	switch ex := expr.(type) {
	case *ast.Literal:
		switch ex.Kind {
		case ast.FloatLit:
			return ast.TypeFloat
		case ast.StringLit:
			return ast.TypeString
		case ast.CharLit:
			return ast.TypeChar
		default:
			return ast.TypeInt
		}
	case *ast.Variable:
		if ex.ResolvedType != "" && ex.ResolvedType != ast.TypeUnknown {
			return ex.ResolvedType
		}
		return nameHintType(ex.Name)
	case *ast.Grouping:
		return displayType(ex.Expr)
	case *ast.Unary:
		if ex.Op == token.Not {
			return ast.TypeInt
		}
		return displayType(ex.Operand)
	case *ast.Binary:
		switch ex.Op {
		case token.Equal, token.NotEqual, token.Less, token.Greater, token.LessEq, token.GreaterEq:
			return ast.TypeInt
		default:
			if displayType(ex.Left) == ast.TypeFloat || displayType(ex.Right) == ast.TypeFloat {
				return ast.TypeFloat
			}
			return ast.TypeInt
		}
	case *ast.Logical:
		return ast.TypeInt
	default:
		return ast.TypeInt
	}
}

// nameHintType falls back to a name-based guess when a Variable carries no
// resolved type; other expressions without a static type (a call result,
// for one) print with %d. Mirrors generator.py's
// identifier-name heuristics: names ending in common string/char
// abbreviations hint at their likely C representation.
func nameHintType(name string) ast.Type {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "_msg"), strings.HasSuffix(lower, "_str"), lower == "msg", lower == "str":
		return ast.TypeString
	case lower == "ch" || (len(name) == 1 && !strings.ContainsAny(lower, "0123456789")):
		return ast.TypeChar
	default:
		return ast.TypeInt
	}
}
