package generator

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildCopyFunction builds a minimal kernel that loads one element from
// input and stores it to output, exercising every access form the
// planarizer rewrites.
func buildCopyFunction() Function {
	input := Variable{Name: "input", Type: "scalar_type", Pointer: true, Restrict: true}
	output := Variable{Name: "output", Type: "scalar_type", Pointer: true, Restrict: true}
	idx := Variable{Name: "idx", Type: "unsigned int"}
	elem := Variable{Name: "elem", Type: "scalar_type"}

	f := Function{Name: "copy_kernel", Qualifier: `extern "C" __global__`}
	f.AppendArg(input)
	f.AppendArg(output)
	f.Body.Add(Declaration{Var: idx, Init: Literal("threadIdx.x")})
	f.Body.Add(Declaration{Var: elem})
	f.Body.Add(Assign{Dst: elem, Src: LoadGlobal{Ptr: input, Idx: idx}})
	f.Body.Add(Assign{Dst: Member{Base: elem, Comp: "y"}, Src: Neg(Member{Base: Index{Base: input, Idx: idx}, Comp: "y"})})
	f.Body.Add(StoreGlobal{Ptr: output, Idx: idx, Val: elem})
	f.Body.Add(Assign{Dst: Index{Base: output, Idx: idx}, Src: elem})
	return f
}

func TestMakePlanarRewritesArguments(t *testing.T) {
	t.Parallel()

	f, err := MakePlanar(buildCopyFunction(), "input")
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, a := range f.Arguments {
		names = append(names, a.Name)
	}
	want := []string{"input_re", "input_im", "output"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("arguments after planarize (-want +got):\n%s", diff)
	}

	src := f.Render()
	if strings.Contains(src, "input[") || strings.Contains(src, "load_cb(input,") {
		t.Error("planarized function still references the interleaved argument")
	}
	if !strings.Contains(src, "load_cb(input_re") || !strings.Contains(src, "load_cb(input_im") {
		t.Error("planarized loads must touch both planes")
	}
}

func TestMakePlanarIdempotent(t *testing.T) {
	t.Parallel()

	once, err := MakePlanar(buildCopyFunction(), "input")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := MakePlanar(once, "input")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(once.Render(), twice.Render()); diff != "" {
		t.Errorf("second planarize changed the function:\n%s", diff)
	}
}

func TestMakePlanarBothSides(t *testing.T) {
	t.Parallel()

	f, err := MakePlanar(buildCopyFunction(), "input")
	if err != nil {
		t.Fatal(err)
	}
	f, err = MakePlanar(f, "output")
	if err != nil {
		t.Fatal(err)
	}

	src := f.Render()
	for _, want := range []string{"input_re", "input_im", "output_re", "output_im"} {
		if !strings.Contains(src, want) {
			t.Errorf("missing plane %q in:\n%s", want, src)
		}
	}
	if !strings.Contains(src, "store_cb(output_re") || !strings.Contains(src, "store_cb(output_im") {
		t.Error("planarized stores must touch both planes")
	}
}

func TestMakePlanarMissingArgument(t *testing.T) {
	t.Parallel()

	if _, err := MakePlanar(buildCopyFunction(), "twiddles"); err == nil {
		t.Error("expected error for unknown argument")
	}
}

func TestMakePlanarRealType(t *testing.T) {
	t.Parallel()

	f, err := MakePlanar(buildCopyFunction(), "input")
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range f.Arguments[:2] {
		if a.Type != "real_type_t<scalar_type>" {
			t.Errorf("plane %s has type %q, want real_type_t<scalar_type>", a.Name, a.Type)
		}
		if !a.Pointer || !a.Restrict {
			t.Errorf("plane %s must stay a restrict pointer", a.Name)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	f1 := buildCopyFunction()
	f2 := buildCopyFunction()
	if diff := cmp.Diff(f1.Render(), f2.Render()); diff != "" {
		t.Errorf("equal trees rendered differently:\n%s", diff)
	}
}

func TestFunctionAppendArgDeduplicates(t *testing.T) {
	t.Parallel()

	f := Function{Name: "k"}
	v := Variable{Name: "x", Type: "unsigned int"}
	f.AppendArg(v)
	f.AppendArg(v)
	if len(f.Arguments) != 1 {
		t.Errorf("duplicate argument appended, have %d args", len(f.Arguments))
	}
}
