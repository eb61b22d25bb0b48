package wasm

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/realmbridge/internal/domain"
	"github.com/bft-labs/realmbridge/internal/ports"
)

func loadTestEngine(t *testing.T, wasmBytes []byte) *Engine {
	t.Helper()
	ctx := context.Background()
	e, err := Load(ctx, wasmBytes)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })
	return e
}

func TestPackUnpackPtrLen(t *testing.T) {
	tests := []struct {
		ptr    uint32
		length uint32
	}{
		{0, 0},
		{2048, 5},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		gotPtr, gotLen := unpackPtrLen(packPtrLen(tt.ptr, tt.length))
		assert.Equal(t, tt.ptr, gotPtr)
		assert.Equal(t, tt.length, gotLen)
	}
}

func TestLoad_EngineCalls(t *testing.T) {
	ctx := context.Background()
	e := loadTestEngine(t, engineModule(false, true, false))

	injected, err := e.IsContextInjected(ctx)
	require.NoError(t, err)
	assert.False(t, injected)

	require.NoError(t, e.ClearContextInjectedFlag(ctx))
	require.NoError(t, e.SetDefaultFileDirectory(ctx, "/data/user/0/io.realm/files"))

	handle, err := e.SetupDebugContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), handle)

	done, err := e.TryRunTask(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestLoad_InjectedContext(t *testing.T) {
	e := loadTestEngine(t, engineModule(true, false, false))

	injected, err := e.IsContextInjected(context.Background())
	require.NoError(t, err)
	assert.True(t, injected)

	done, err := e.TryRunTask(context.Background())
	require.NoError(t, err)
	assert.False(t, done)
}

func TestProcessDebugCommand_RoundTrip(t *testing.T) {
	ctx := context.Background()
	e := loadTestEngine(t, engineModule(false, false, false))

	out, err := e.ProcessDebugCommand(ctx, "/create_session", `{"schema":[]}`)
	require.NoError(t, err)
	assert.Equal(t, `{"schema":[]}`, out)

	// Successive calls allocate fresh buffers.
	out, err = e.ProcessDebugCommand(ctx, "/call_method", `{"id":2}`)
	require.NoError(t, err)
	assert.Equal(t, `{"id":2}`, out)

	out, err = e.ProcessDebugCommand(ctx, "/begin_transaction", "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSetupFlushUIQueue_HostCallback(t *testing.T) {
	ctx := context.Background()
	e := loadTestEngine(t, engineModule(false, false, true))

	var invoked atomic.Int32
	invoker := ports.CallInvokerFunc(func(fn func()) {
		invoked.Add(1)
		fn()
	})

	require.NoError(t, e.SetupFlushUIQueue(ctx, invoker))
	assert.Equal(t, int32(1), invoked.Load())
}

func TestSetupFlushUIQueue_OptionalExport(t *testing.T) {
	e := loadTestEngine(t, engineModule(false, false, false))

	var invoked atomic.Int32
	invoker := ports.CallInvokerFunc(func(fn func()) { invoked.Add(1) })

	require.NoError(t, e.SetupFlushUIQueue(context.Background(), invoker))
	assert.Zero(t, invoked.Load())

	e.flushUIQueue()
	assert.Equal(t, int32(1), invoked.Load())
}

func TestReadAsset(t *testing.T) {
	ctx := context.Background()
	e := loadTestEngine(t, assetModule())

	loadAsset := func(path string) string {
		e.mu.Lock()
		defer e.mu.Unlock()

		packed, err := e.writeString(ctx, path)
		require.NoError(t, err)
		res, err := e.call(ctx, "load_asset", packed)
		require.NoError(t, err)
		out, err := e.readString(ctx, res)
		require.NoError(t, err)
		return out
	}

	assert.Empty(t, loadAsset("default.realm"), "no asset source set")

	e.SetAssets(fstest.MapFS{
		"default.realm":    {Data: []byte("bundled")},
		"schemas/dog.json": {Data: []byte(`{"name":"Dog"}`)},
		"empty.txt":        {Data: nil},
	})

	assert.Equal(t, "bundled", loadAsset("default.realm"))
	assert.Equal(t, `{"name":"Dog"}`, loadAsset("schemas/dog.json"))
	assert.Empty(t, loadAsset("missing.realm"))
	assert.Empty(t, loadAsset("empty.txt"))
	assert.Empty(t, loadAsset("../default.realm"))
	assert.Empty(t, loadAsset("/default.realm"))

	e.SetAssets(nil)
	assert.Empty(t, loadAsset("default.realm"))
}

func TestLoad_UnsupportedJSEngine(t *testing.T) {
	mod := buildModule(
		[]testImport{{module: jscModuleName, name: "JSGlobalContextCreate"}},
		[]testFunc{{name: exportAllocate, params: []byte{valI32}, results: []byte{valI32}, body: allocateBody}},
	)

	_, err := Load(context.Background(), mod)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedJSEngine)
	assert.Contains(t, err.Error(), "JavaScriptCore")
}

func TestLoad_MissingExports(t *testing.T) {
	mod := buildModule(nil, []testFunc{
		{name: exportAllocate, params: []byte{valI32}, results: []byte{valI32}, body: allocateBody},
		{name: exportTryRunTask, results: []byte{valI32}, body: []byte{0x41, 0x01}},
	})

	_, err := Load(context.Background(), mod)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEngineLoad)
	assert.Contains(t, err.Error(), exportIsContextInjected)
	assert.Contains(t, err.Error(), exportProcessDebugCmd)
	assert.NotContains(t, err.Error(), exportTryRunTask)
}

func TestLoad_InvalidBinary(t *testing.T) {
	_, err := Load(context.Background(), []byte("not wasm"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEngineLoad)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "librealm.wasm")
	require.NoError(t, os.WriteFile(path, engineModule(false, true, false), 0o644))

	e, err := LoadFile(context.Background(), path, WithMemoryLimitPages(16))
	require.NoError(t, err)
	require.NoError(t, e.Close(context.Background()))

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.wasm"))
	assert.ErrorIs(t, err, domain.ErrEngineLoad)
}
