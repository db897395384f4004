package generator

import (
	"strings"

	"github.com/pkg/errors"
)

// MakePlanar rewrites a fully built function so that the interleaved
// complex pointer argument argName is replaced by two real-valued
// pointer arguments (argName_re, argName_im), and every statement that
// referenced the original argument is rewritten to touch the correct
// plane for the component it accessed.
//
// The rewrite is structural and type-directed, applied independently per
// input and output argument, and idempotent: planarizing a function that
// is already planar for argName returns it unchanged.
func MakePlanar(f Function, argName string) (Function, error) {
	argIdx := -1
	for i, a := range f.Arguments {
		if a.Name == argName {
			argIdx = i
			break
		}
		if a.Name == argName+"_re" {
			// already planar for this argument
			return f, nil
		}
	}
	if argIdx < 0 {
		return f, errors.Errorf("planarize: function %s has no argument %q", f.Name, argName)
	}
	orig := f.Arguments[argIdx]
	if !orig.Pointer {
		return f, errors.Errorf("planarize: argument %q of %s is not a pointer", argName, f.Name)
	}

	realType := strings.Replace(orig.Type, "scalar_type", "real_type_t<scalar_type>", 1)
	re := Variable{Name: argName + "_re", Type: realType, Pointer: true, Restrict: orig.Restrict}
	im := Variable{Name: argName + "_im", Type: realType, Pointer: true, Restrict: orig.Restrict}

	p := &planarizer{target: argName, re: re, im: im}
	body := p.stmts(f.Body)
	if p.err != nil {
		return f, errors.Wrapf(p.err, "planarize %s for %q", f.Name, argName)
	}

	out := f
	out.Arguments = make([]Variable, 0, len(f.Arguments)+1)
	out.Arguments = append(out.Arguments, f.Arguments[:argIdx]...)
	out.Arguments = append(out.Arguments, re, im)
	out.Arguments = append(out.Arguments, f.Arguments[argIdx+1:]...)
	out.Body = body
	return out, nil
}

type planarizer struct {
	target string
	re, im Variable
	err    error
}

func (p *planarizer) plane(comp string) Variable {
	if comp == "x" {
		return p.re
	}
	return p.im
}

func (p *planarizer) isTarget(e Expr) (Expr, bool) {
	if v, ok := e.(Variable); ok && v.Name == p.target {
		return v, true
	}
	return nil, false
}

func (p *planarizer) stmts(list StatementList) StatementList {
	out := make(StatementList, 0, len(list))
	for _, s := range list {
		out = append(out, p.stmt(s)...)
	}
	return out
}

func (p *planarizer) stmt(s Statement) []Statement {
	switch st := s.(type) {
	case Declaration:
		if st.Init == nil {
			return []Statement{st}
		}
		// whole-complex reads from the target split into per-component
		// assignments; the declared variable loses any const qualifier
		// since it is now written in two steps
		if idx, ok := st.Init.(Index); ok {
			if _, hit := p.isTarget(idx.Base); hit {
				v := stripConst(st.Var)
				i := p.expr(idx.Idx)
				return []Statement{
					Declaration{Var: v},
					Assign{Dst: Member{Base: v, Comp: "x"}, Src: p.re.At(i)},
					Assign{Dst: Member{Base: v, Comp: "y"}, Src: p.im.At(i)},
				}
			}
		}
		if ld, ok := st.Init.(LoadGlobal); ok && ld.Ptr.Name == p.target {
			v := stripConst(st.Var)
			i := p.expr(ld.Idx)
			return []Statement{
				Declaration{Var: v},
				Assign{Dst: Member{Base: v, Comp: "x"}, Src: LoadGlobal{Ptr: p.re, Idx: i}},
				Assign{Dst: Member{Base: v, Comp: "y"}, Src: LoadGlobal{Ptr: p.im, Idx: i}},
			}
		}
		return []Statement{Declaration{Var: st.Var, Init: p.expr(st.Init)}}

	case Assign:
		// whole-element write to the target
		if idx, ok := st.Dst.(Index); ok {
			if _, hit := p.isTarget(idx.Base); hit {
				i := p.expr(idx.Idx)
				src := p.expr(st.Src)
				return []Statement{
					Assign{Dst: p.re.At(i), Op: st.Op, Src: p.comp(src, "x")},
					Assign{Dst: p.im.At(i), Op: st.Op, Src: p.comp(src, "y")},
				}
			}
		}
		// whole-element callback load from the target
		if ld, ok := st.Src.(LoadGlobal); ok && ld.Ptr.Name == p.target {
			i := p.expr(ld.Idx)
			dst := p.expr(st.Dst)
			return []Statement{
				Assign{Dst: p.comp(dst, "x"), Op: st.Op, Src: LoadGlobal{Ptr: p.re, Idx: i}},
				Assign{Dst: p.comp(dst, "y"), Op: st.Op, Src: LoadGlobal{Ptr: p.im, Idx: i}},
			}
		}
		return []Statement{Assign{Dst: p.expr(st.Dst), Op: st.Op, Src: p.expr(st.Src)}}

	case StoreGlobal:
		if st.Ptr.Name == p.target {
			i := p.expr(st.Idx)
			val := p.expr(st.Val)
			return []Statement{
				StoreGlobal{Ptr: p.re, Idx: i, Val: p.comp(val, "x")},
				StoreGlobal{Ptr: p.im, Idx: i, Val: p.comp(val, "y")},
			}
		}
		return []Statement{StoreGlobal{Ptr: st.Ptr, Idx: p.expr(st.Idx), Val: p.expr(st.Val)}}

	case If:
		return []Statement{If{Cond: p.expr(st.Cond), Then: p.stmts(st.Then), Else: p.stmts(st.Else)}}

	case For:
		return []Statement{For{
			Var: st.Var, Init: p.expr(st.Init), Cond: p.expr(st.Cond),
			Inc: p.expr(st.Inc), Body: p.stmts(st.Body), Unroll: st.Unroll,
		}}

	default:
		return []Statement{s}
	}
}

// expr rewrites component-directed accesses to the target argument and
// recurses everywhere else. A bare complex-valued reference to the
// target outside the supported statement patterns is a generator bug.
func (p *planarizer) expr(e Expr) Expr {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case Member:
		if idx, ok := x.Base.(Index); ok {
			if _, hit := p.isTarget(idx.Base); hit {
				return p.plane(x.Comp).At(p.expr(idx.Idx))
			}
		}
		return Member{Base: p.expr(x.Base), Comp: x.Comp}
	case Index:
		if _, hit := p.isTarget(x.Base); hit {
			p.fail("bare complex element access on planar argument")
			return x
		}
		return Index{Base: p.expr(x.Base), Idx: p.expr(x.Idx)}
	case Variable:
		if x.Name == p.target {
			p.fail("bare pointer reference to planar argument")
		}
		return x
	case unary:
		return unary{op: x.op, e: p.expr(x.e)}
	case binary:
		return binary{op: x.op, a: p.expr(x.a), b: p.expr(x.b)}
	case Paren:
		return Paren{E: p.expr(x.E)}
	case Ternary:
		return Ternary{Cond: p.expr(x.Cond), Then: p.expr(x.Then), Else: p.expr(x.Else)}
	case Call:
		args := make([]Expr, len(x.Args))
		for i, a := range x.Args {
			args[i] = p.expr(a)
		}
		return Call{Name: x.Name, Args: args}
	case ComplexLit:
		return ComplexLit{Re: p.expr(x.Re), Im: p.expr(x.Im)}
	case LoadGlobal:
		if x.Ptr.Name == p.target {
			p.fail("callback load of planar argument outside an assignment")
			return x
		}
		return LoadGlobal{Ptr: x.Ptr, Idx: p.expr(x.Idx)}
	default:
		return e
	}
}

// comp projects the requested component out of a complex-valued
// expression.
func (p *planarizer) comp(e Expr, c string) Expr {
	switch x := e.(type) {
	case Variable:
		return Member{Base: x, Comp: c}
	case Index:
		return Member{Base: x, Comp: c}
	case ComplexLit:
		if c == "x" {
			return x.Re
		}
		return x.Im
	case Paren:
		return p.comp(x.E, c)
	case Member:
		p.fail("component projection of a real-valued expression")
		return x
	default:
		return Member{Base: Paren{E: e}, Comp: c}
	}
}

func (p *planarizer) fail(msg string) {
	if p.err == nil {
		p.err = errors.New(msg)
	}
}

func stripConst(v Variable) Variable {
	v.Type = strings.TrimPrefix(v.Type, "const ")
	return v
}
