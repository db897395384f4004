package rtc

import (
	"github.com/samjwu/rocFFT/internal/fftypes"
	gen "github.com/samjwu/rocFFT/internal/generator"
)

// callbackArgs returns the callback parameter block appended to every
// generated entry point, in launch-ABI order.
func callbackArgs() []gen.Variable {
	return []gen.Variable{
		{Name: "load_cb_fn", Type: "void", Pointer: true},
		{Name: "load_cb_data", Type: "void", Pointer: true},
		{Name: "load_cb_lds_bytes", Type: "unsigned int"},
		{Name: "store_cb_fn", Type: "void", Pointer: true},
		{Name: "store_cb_data", Type: "void", Pointer: true},
	}
}

// callbackLoadDecl splices the load helper declaration. Loads routed
// through LoadGlobal hit the user callback when one is installed;
// schemes that are never the first kernel to read global memory bypass
// this helper with direct indexing.
//
// The r2c/c2r callback variants run in kernels that see complex data
// while the user callback sees the underlying real buffer: the helper
// adapts by issuing two real callback invocations per complex element.
func callbackLoadDecl(typ string, cbtype fftypes.CallbackType) gen.Statement {
	if cbtype == fftypes.CallbackUserLoadStoreC2R {
		return gen.Raw(`    auto load_cb = [=](const ` + typ + `* ptr, size_t idx, void* user, void* lds) -> ` + typ + ` {
        if(load_cb_fn == nullptr)
            return ptr[idx];
        auto  cb   = reinterpret_cast<real_type_t<` + typ + `> (*)(const real_type_t<` + typ + `>*, size_t, void*, void*)>(load_cb_fn);
        auto* rptr = reinterpret_cast<const real_type_t<` + typ + `>*>(ptr);
        return ` + typ + `{cb(rptr, 2 * idx, user, lds), cb(rptr, 2 * idx + 1, user, lds)};
    };`)
	}
	return gen.Raw(`    auto load_cb = [=](const ` + typ + `* ptr, size_t idx, void* user, void* lds) -> ` + typ + ` {
        if(cbtype == CallbackType::NONE || load_cb_fn == nullptr)
            return ptr[idx];
        return reinterpret_cast<` + typ + ` (*)(const ` + typ + `*, size_t, void*, void*)>(load_cb_fn)(ptr, idx, user, lds);
    };`)
}

// callbackStoreDecl splices the store helper declaration. When a fused
// store scale is requested, the multiply happens here so every
// boundary-adjacent write picks it up.
func callbackStoreDecl(typ string, cbtype fftypes.CallbackType, scale bool) gen.Statement {
	mul := ""
	if scale {
		mul = `
        val = scale_factor * val;`
	}
	if cbtype == fftypes.CallbackUserLoadStoreR2C {
		return gen.Raw(`    auto store_cb = [=](` + typ + `* ptr, size_t idx, ` + typ + ` val, void* user, void* lds) {` + mul + `
        if(store_cb_fn == nullptr)
        {
            ptr[idx] = val;
            return;
        }
        auto  cb   = reinterpret_cast<void (*)(real_type_t<` + typ + `>*, size_t, real_type_t<` + typ + `>, void*, void*)>(store_cb_fn);
        auto* rptr = reinterpret_cast<real_type_t<` + typ + `>*>(ptr);
        cb(rptr, 2 * idx, val.x, user, lds);
        cb(rptr, 2 * idx + 1, val.y, user, lds);
    };`)
	}
	return gen.Raw(`    auto store_cb = [=](` + typ + `* ptr, size_t idx, ` + typ + ` val, void* user, void* lds) {` + mul + `
        if(cbtype == CallbackType::NONE || store_cb_fn == nullptr)
            ptr[idx] = val;
        else
            reinterpret_cast<void (*)(` + typ + `*, size_t, ` + typ + `, void*, void*)>(store_cb_fn)(ptr, idx, val, user, lds);
    };`)
}

// makeLoadStoreOps appends the kernel arguments required by any fused
// elementwise load/store operations on the stage.
func makeLoadStoreOps(f *gen.Function, _ fftypes.LoadOps, store fftypes.StoreOps) {
	if store.Enabled() {
		f.AppendArg(gen.Variable{Name: "scale_factor", Type: "const real_type_t<scalar_type>"})
	}
}
