package wasm

// Minimal WebAssembly binary encoder for test guests.

const (
	valI32 byte = 0x7f
	valI64 byte = 0x7e
)

type testImport struct {
	module, name    string
	params, results []byte
}

type testFunc struct {
	name            string
	params, results []byte
	body            []byte
}

// allocateBody is a bump allocator over mutable global 0.
var allocateBody = []byte{
	0x23, 0x00, // global.get 0 (result)
	0x23, 0x00, // global.get 0
	0x20, 0x00, // local.get 0
	0x6a,       // i32.add
	0x24, 0x00, // global.set 0
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func wasmName(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func wasmVec(items [][]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func funcType(params, results []byte) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(params)))...)
	out = append(out, params...)
	out = append(out, uleb(uint32(len(results)))...)
	return append(out, results...)
}

// buildModule encodes a module with one memory page, one mutable i32 global
// starting at 2048, the given function imports and exported functions.
func buildModule(imports []testImport, funcs []testFunc) []byte {
	var types, importEntries, funcIdx, exports, codes [][]byte

	for _, imp := range imports {
		typeIdx := uint32(len(types))
		types = append(types, funcType(imp.params, imp.results))
		entry := append(wasmName(imp.module), wasmName(imp.name)...)
		entry = append(entry, 0x00)
		importEntries = append(importEntries, append(entry, uleb(typeIdx)...))
	}
	for i, f := range funcs {
		typeIdx := uint32(len(types))
		types = append(types, funcType(f.params, f.results))
		funcIdx = append(funcIdx, uleb(typeIdx))

		exp := append(wasmName(f.name), 0x00)
		exports = append(exports, append(exp, uleb(uint32(len(imports)+i))...))

		body := []byte{0x00} // no locals
		body = append(body, f.body...)
		body = append(body, 0x0b)
		codes = append(codes, append(uleb(uint32(len(body))), body...))
	}
	exports = append(exports, append(wasmName("memory"), 0x02, 0x00))

	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, section(1, wasmVec(types))...)
	if len(importEntries) > 0 {
		mod = append(mod, section(2, wasmVec(importEntries))...)
	}
	mod = append(mod, section(3, wasmVec(funcIdx))...)
	mod = append(mod, section(5, []byte{0x01, 0x00, 0x01})...)
	// i32 mutable, i32.const 2048, end
	mod = append(mod, section(6, []byte{0x01, valI32, 0x01, 0x41, 0x80, 0x10, 0x0b})...)
	mod = append(mod, section(7, wasmVec(exports))...)
	mod = append(mod, section(10, wasmVec(codes))...)
	return mod
}

// engineFuncs returns the required engine exports. The injected flag is
// reported as given, setup_debug_context returns 7, process_debug_command
// echoes its args and try_run_task returns runTask.
func engineFuncs(injected, runTask bool) []testFunc {
	boolConst := func(b bool) []byte {
		if b {
			return []byte{0x41, 0x01}
		}
		return []byte{0x41, 0x00}
	}

	return []testFunc{
		{name: exportAllocate, params: []byte{valI32}, results: []byte{valI32}, body: allocateBody},
		{name: exportIsContextInjected, results: []byte{valI32}, body: boolConst(injected)},
		{name: exportClearInjectedFlag},
		{name: exportSetFileDirectory, params: []byte{valI64}},
		{name: exportSetupDebugContext, results: []byte{valI64}, body: []byte{0x42, 0x07}},
		{name: exportProcessDebugCmd, params: []byte{valI64, valI64}, results: []byte{valI64}, body: []byte{0x20, 0x01}},
		{name: exportTryRunTask, results: []byte{valI32}, body: boolConst(runTask)},
	}
}

// engineModule returns a complete engine guest built from engineFuncs. When
// withFlush is set the module imports realm_host.flush_ui_queue as function 0
// and setup_flush_ui_queue calls it.
func engineModule(injected, runTask bool, withFlush bool) []byte {
	var imports []testImport
	funcs := engineFuncs(injected, runTask)
	if withFlush {
		imports = append(imports, testImport{module: HostModuleName, name: hostFuncFlushUIQueue})
		funcs = append(funcs, testFunc{name: exportSetupFlushUIQueue, body: []byte{0x10, 0x00}})
	}
	return buildModule(imports, funcs)
}

// assetModule returns an engine guest that imports realm_host.read_asset as
// function 0 and exports load_asset(path i64) i64, which forwards to it.
func assetModule() []byte {
	imports := []testImport{
		{module: HostModuleName, name: hostFuncReadAsset, params: []byte{valI64}, results: []byte{valI64}},
	}
	funcs := append(engineFuncs(false, false), testFunc{
		name:    "load_asset",
		params:  []byte{valI64},
		results: []byte{valI64},
		body:    []byte{0x20, 0x00, 0x10, 0x00}, // local.get 0, call 0
	})
	return buildModule(imports, funcs)
}
