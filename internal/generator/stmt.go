package generator

import (
	"fmt"
	"strings"
)

// Statement is one node of a kernel body. Statements form ordered
// sequences; nested bodies give the IR its tree shape.
type Statement interface {
	renderInto(sb *strings.Builder, indent string)
}

// StatementList is an ordered statement sequence.
type StatementList []Statement

// Add appends statements in order.
func (l *StatementList) Add(stmts ...Statement) {
	*l = append(*l, stmts...)
}

func (l StatementList) renderInto(sb *strings.Builder, indent string) {
	for _, s := range l {
		s.renderInto(sb, indent)
	}
}

// Declaration declares a variable, optionally with an initializer.
type Declaration struct {
	Var  Variable
	Init Expr
}

func (d Declaration) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString(indent)
	sb.WriteString(d.Var.declString())
	if d.Init != nil {
		sb.WriteString(" = ")
		d.Init.render(sb)
	}
	sb.WriteString(";\n")
}

// Assign writes Src to Dst with the given operator ("=" when Op is
// empty; compound forms like "+=" are allowed).
type Assign struct {
	Dst Expr
	Op  string
	Src Expr
}

func (a Assign) renderInto(sb *strings.Builder, indent string) {
	op := a.Op
	if op == "" {
		op = "="
	}
	sb.WriteString(indent)
	a.Dst.render(sb)
	sb.WriteString(" " + op + " ")
	a.Src.render(sb)
	sb.WriteString(";\n")
}

// AddAssign is shorthand for a "+=" compound assignment.
func AddAssign(dst Expr, src Expr) Assign { return Assign{Dst: dst, Op: "+=", Src: src} }

// ModAssign is shorthand for a "%=" compound assignment.
func ModAssign(dst Expr, src Expr) Assign { return Assign{Dst: dst, Op: "%=", Src: src} }

// StoreGlobal writes one element to global memory through the store
// callback. Schemes that are never the last kernel to write global
// memory assign through direct indexing instead.
type StoreGlobal struct {
	Ptr Variable
	Idx Expr
	Val Expr
}

func (s StoreGlobal) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString(indent)
	sb.WriteString("store_cb(")
	s.Ptr.render(sb)
	sb.WriteString(", ")
	s.Idx.render(sb)
	sb.WriteString(", ")
	s.Val.render(sb)
	sb.WriteString(", store_cb_data, nullptr);\n")
}

// If is a conditional block with an optional else branch.
type If struct {
	Cond Expr
	Then StatementList
	Else StatementList
}

func (i If) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString(indent)
	sb.WriteString("if(")
	i.Cond.render(sb)
	sb.WriteString(")\n")
	sb.WriteString(indent + "{\n")
	i.Then.renderInto(sb, indent+"    ")
	sb.WriteString(indent + "}\n")
	if len(i.Else) > 0 {
		sb.WriteString(indent + "else\n")
		sb.WriteString(indent + "{\n")
		i.Else.renderInto(sb, indent+"    ")
		sb.WriteString(indent + "}\n")
	}
}

// For is a counted loop. Unroll requests a #pragma unroll hint.
type For struct {
	Var    Variable
	Init   Expr
	Cond   Expr
	Inc    Expr
	Body   StatementList
	Unroll bool
}

func (f For) renderInto(sb *strings.Builder, indent string) {
	if f.Unroll {
		sb.WriteString(indent + "#pragma unroll\n")
	}
	sb.WriteString(indent)
	sb.WriteString("for(")
	sb.WriteString(f.Var.Type + " " + f.Var.Name + " = ")
	f.Init.render(sb)
	sb.WriteString("; ")
	f.Cond.render(sb)
	sb.WriteString("; " + f.Var.Name + " += ")
	f.Inc.render(sb)
	sb.WriteString(")\n")
	sb.WriteString(indent + "{\n")
	f.Body.renderInto(sb, indent+"    ")
	sb.WriteString(indent + "}\n")
}

// Break exits the innermost loop.
type Break struct{}

func (Break) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "break;\n")
}

// Return is an early return from the kernel.
type Return struct{}

func (Return) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "return;\n")
}

// SyncThreads is an execution-group-wide barrier.
type SyncThreads struct{}

func (SyncThreads) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString(indent + "__syncthreads();\n")
}

// Comment emits one line comment per entry.
type Comment []string

func (c Comment) renderInto(sb *strings.Builder, indent string) {
	for _, line := range c {
		sb.WriteString(indent + "// " + line + "\n")
	}
}

// LineBreak emits a blank line to keep the generated source readable.
type LineBreak struct{}

func (LineBreak) renderInto(sb *strings.Builder, indent string) {
	sb.WriteString("\n")
}

// Raw splices preformatted source text verbatim, for device helpers that
// never need structural rewriting.
type Raw string

func (r Raw) renderInto(sb *strings.Builder, _ string) {
	sb.WriteString(string(r))
	if !strings.HasSuffix(string(r), "\n") {
		sb.WriteString("\n")
	}
}

// Function is a device entry point: qualifier, launch-bounds hint,
// ordered de-duplicated arguments, and an ordered body. Equal trees
// render byte-identically; kernel identity derives from the generated
// name plus a generator version, never from re-hashing rendered text.
type Function struct {
	Name         string
	Qualifier    string
	LaunchBounds uint
	Arguments    []Variable
	Body         StatementList
}

// AppendArg adds an argument unless one with the same name is present.
func (f *Function) AppendArg(v Variable) {
	for _, a := range f.Arguments {
		if a.Name == v.Name {
			return
		}
	}
	f.Arguments = append(f.Arguments, v)
}

// Render emits the function as HIP C++ source text.
func (f *Function) Render() string {
	var sb strings.Builder
	if f.Qualifier != "" {
		sb.WriteString(f.Qualifier + "\n")
	}
	if f.LaunchBounds > 0 {
		fmt.Fprintf(&sb, "__launch_bounds__(%d) ", f.LaunchBounds)
	}
	sb.WriteString("void " + f.Name + "(")
	for i, a := range f.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.declString())
	}
	sb.WriteString(")\n{\n")
	f.Body.renderInto(&sb, "    ")
	sb.WriteString("}\n")
	return sb.String()
}
