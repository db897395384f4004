// Package generator implements the kernel intermediate representation:
// a closed set of expression and statement nodes that render
// deterministically to HIP C++ source text. Structural rewrites such as
// planarization operate on these trees rather than on text.
package generator

import (
	"fmt"
	"strings"
)

// Expr is a pure expression node. Rendering an expression has no side
// effect on the tree.
type Expr interface {
	render(sb *strings.Builder)
}

// Literal is a raw source token: a number, a builtin identifier such as
// blockIdx.x, or a type-level constant.
type Literal string

func (l Literal) render(sb *strings.Builder) { sb.WriteString(string(l)) }

// Lit converts common Go values to literal tokens.
func Lit(v any) Expr {
	switch x := v.(type) {
	case string:
		return Literal(x)
	case Expr:
		return x
	default:
		return Literal(fmt.Sprint(x))
	}
}

// Variable is a symbolic name with a semantic type. A Variable is both a
// declarable entity (function argument, local, shared tile) and an
// expression referencing it. Names are unique within one function.
type Variable struct {
	Name     string
	Type     string
	Pointer  bool
	Restrict bool
	// Fixed array extents for local/shared declarations. Zero means the
	// variable is not an array. ArraySize2 is only meaningful with
	// ArraySize, and declares a 2D tile.
	ArraySize  int
	ArraySize2 int
}

func (v Variable) render(sb *strings.Builder) { sb.WriteString(v.Name) }

// X selects the real component of a complex-valued variable.
func (v Variable) X() Expr { return Member{Base: v, Comp: "x"} }

// Y selects the imaginary component of a complex-valued variable.
func (v Variable) Y() Expr { return Member{Base: v, Comp: "y"} }

// At indexes the variable.
func (v Variable) At(idx Expr) Index { return Index{Base: v, Idx: idx} }

// At2 indexes a 2D tile.
func (v Variable) At2(row, col Expr) Index {
	return Index{Base: Index{Base: v, Idx: row}, Idx: col}
}

// declaration text for the variable, used by Declaration and argument
// rendering.
func (v Variable) declString() string {
	var sb strings.Builder
	sb.WriteString(v.Type)
	if v.Pointer {
		sb.WriteString("*")
	}
	if v.Restrict {
		sb.WriteString(" __restrict__")
	}
	sb.WriteString(" ")
	sb.WriteString(v.Name)
	if v.ArraySize > 0 {
		fmt.Fprintf(&sb, "[%d]", v.ArraySize)
		if v.ArraySize2 > 0 {
			fmt.Fprintf(&sb, "[%d]", v.ArraySize2)
		}
	}
	return sb.String()
}

// Member is component access on a complex value.
type Member struct {
	Base Expr
	Comp string
}

func (m Member) render(sb *strings.Builder) {
	m.Base.render(sb)
	sb.WriteString(".")
	sb.WriteString(m.Comp)
}

// Index is array subscripting.
type Index struct {
	Base Expr
	Idx  Expr
}

func (i Index) render(sb *strings.Builder) {
	i.Base.render(sb)
	sb.WriteString("[")
	i.Idx.render(sb)
	sb.WriteString("]")
}

func (i Index) X() Expr { return Member{Base: i, Comp: "x"} }
func (i Index) Y() Expr { return Member{Base: i, Comp: "y"} }

type unary struct {
	op string
	e  Expr
}

func (u unary) render(sb *strings.Builder) {
	sb.WriteString(u.op)
	u.e.render(sb)
}

// Neg is unary minus.
func Neg(e Expr) Expr { return unary{op: "-", e: e} }

type binary struct {
	op   string
	a, b Expr
}

func (b binary) render(sb *strings.Builder) {
	b.a.render(sb)
	sb.WriteString(" ")
	sb.WriteString(b.op)
	sb.WriteString(" ")
	b.b.render(sb)
}

func fold(op string, first Expr, rest []Expr) Expr {
	e := first
	for _, r := range rest {
		e = binary{op: op, a: e, b: r}
	}
	return e
}

// Arithmetic and comparison constructors. Variadic forms fold left.
func Add(a Expr, rest ...Expr) Expr { return fold("+", a, rest) }
func Sub(a, b Expr) Expr            { return binary{op: "-", a: a, b: b} }
func Mul(a Expr, rest ...Expr) Expr { return fold("*", a, rest) }
func Div(a, b Expr) Expr            { return binary{op: "/", a: a, b: b} }
func Mod(a, b Expr) Expr            { return binary{op: "%", a: a, b: b} }
func Eq(a, b Expr) Expr             { return binary{op: "==", a: a, b: b} }
func Lt(a, b Expr) Expr             { return binary{op: "<", a: a, b: b} }
func Ge(a, b Expr) Expr             { return binary{op: ">=", a: a, b: b} }
func Gt(a, b Expr) Expr             { return binary{op: ">", a: a, b: b} }
func And(a Expr, rest ...Expr) Expr { return fold("&&", a, rest) }
func Or(a Expr, rest ...Expr) Expr  { return fold("||", a, rest) }

// Paren wraps an expression in parentheses to pin evaluation order in
// the rendered text.
type Paren struct {
	E Expr
}

func (p Paren) render(sb *strings.Builder) {
	sb.WriteString("(")
	p.E.render(sb)
	sb.WriteString(")")
}

// Ternary is the conditional operator.
type Ternary struct {
	Cond, Then, Else Expr
}

func (t Ternary) render(sb *strings.Builder) {
	t.Cond.render(sb)
	sb.WriteString(" ? ")
	t.Then.render(sb)
	sb.WriteString(" : ")
	t.Else.render(sb)
}

// Call is a plain function call expression.
type Call struct {
	Name string
	Args []Expr
}

func (c Call) render(sb *strings.Builder) {
	sb.WriteString(c.Name)
	sb.WriteString("(")
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.render(sb)
	}
	sb.WriteString(")")
}

// ComplexLit builds a complex value from two real-valued expressions.
type ComplexLit struct {
	Re, Im Expr
}

func (c ComplexLit) render(sb *strings.Builder) {
	sb.WriteString("scalar_type{")
	c.Re.render(sb)
	sb.WriteString(", ")
	c.Im.render(sb)
	sb.WriteString("}")
}

// LoadGlobal reads one element from global memory through the load
// callback. Schemes that are never the first kernel to read global
// memory use direct indexing instead of this node.
type LoadGlobal struct {
	Ptr Variable
	Idx Expr
}

func (l LoadGlobal) render(sb *strings.Builder) {
	sb.WriteString("load_cb(")
	l.Ptr.render(sb)
	sb.WriteString(", ")
	l.Idx.render(sb)
	sb.WriteString(", load_cb_data, nullptr)")
}

// ExprString renders a single expression, mainly for tests and
// diagnostics.
func ExprString(e Expr) string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}
