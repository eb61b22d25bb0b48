package app

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/realmbridge/internal/domain"
	"github.com/bft-labs/realmbridge/internal/ports"
	"github.com/bft-labs/realmbridge/pkg/analytics"
	"github.com/bft-labs/realmbridge/pkg/devenv"
	"github.com/bft-labs/realmbridge/pkg/lifecycle"
	"github.com/bft-labs/realmbridge/pkg/state"
)

type fakeEngine struct {
	mu            sync.Mutex
	injected      bool
	fileDir       string
	assets        fs.FS
	debugContexts int
	cleared       int
	invoker       ports.CallInvoker
	taskDone      atomic.Bool
	polls         atomic.Int32
	processErr    error
}

func (e *fakeEngine) IsContextInjected(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.injected, nil
}

func (e *fakeEngine) ClearContextInjectedFlag(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cleared++
	e.injected = false
	return nil
}

func (e *fakeEngine) SetDefaultFileDirectory(ctx context.Context, dir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileDir = dir
	return nil
}

func (e *fakeEngine) SetAssets(assets fs.FS) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assets = assets
}

func (e *fakeEngine) SetupDebugContext(ctx context.Context) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debugContexts++
	return int64(e.debugContexts), nil
}

func (e *fakeEngine) ProcessDebugCommand(ctx context.Context, cmd, args string) (string, error) {
	if e.processErr != nil {
		return "", e.processErr
	}
	return `{"cmd":"` + cmd + `","args":` + args + `}`, nil
}

func (e *fakeEngine) TryRunTask(ctx context.Context) (bool, error) {
	e.polls.Add(1)
	return e.taskDone.Load(), nil
}

func (e *fakeEngine) SetupFlushUIQueue(ctx context.Context, invoker ports.CallInvoker) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invoker = invoker
	return nil
}

func (e *fakeEngine) Close(ctx context.Context) error { return nil }

type fakeHost struct {
	filesDir string
	err      error
	invoker  ports.CallInvoker
	device   devenv.DeviceInfo
	assets   fs.FS
}

func (h *fakeHost) FilesDir() (string, error)      { return h.filesDir, h.err }
func (h *fakeHost) CallInvoker() ports.CallInvoker { return h.invoker }
func (h *fakeHost) DeviceInfo() devenv.DeviceInfo  { return h.device }
func (h *fakeHost) Assets() fs.FS                  { return h.assets }

type staticInterfaces []devenv.Interface

func (s staticInterfaces) Interfaces() ([]devenv.Interface, error) { return s, nil }

// switchingInterfaces returns whatever interfaces were last set.
type switchingInterfaces struct {
	mu     sync.Mutex
	ifaces []devenv.Interface
}

func (s *switchingInterfaces) Set(ifaces ...devenv.Interface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ifaces = ifaces
}

func (s *switchingInterfaces) Interfaces() ([]devenv.Interface, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ifaces, nil
}

type recordingSender struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (s *recordingSender) Send(ctx context.Context, event analytics.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func newTestBridge(t *testing.T, engine *fakeEngine, host *fakeHost, opts ...Option) *Bridge {
	t.Helper()
	if host.filesDir == "" && host.err == nil {
		host.filesDir = t.TempDir()
	}
	opts = append([]Option{
		WithDebugAddress("127.0.0.1", 0),
		WithInterfaceLister(staticInterfaces{{
			Name:  "wlan0",
			Up:    true,
			Addrs: []net.IP{net.ParseIP("192.168.1.20")},
		}}),
		WithTaskInterval(time.Millisecond),
	}, opts...)

	b, err := New(context.Background(), engine, host, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Destroy(context.Background()) })
	return b
}

func TestNew_PassesAssets(t *testing.T) {
	assets := fstest.MapFS{"default.realm": {Data: []byte("bundled")}}
	engine := &fakeEngine{}
	newTestBridge(t, engine, &fakeHost{assets: assets})

	engine.mu.Lock()
	got := engine.assets
	engine.mu.Unlock()
	require.NotNil(t, got)
	data, err := fs.ReadFile(got, "default.realm")
	require.NoError(t, err)
	assert.Equal(t, "bundled", string(data))
}

func TestNew_CanonicalFilesDir(t *testing.T) {
	root := t.TempDir()
	filesDir := filepath.Join(root, "files")
	require.NoError(t, os.Mkdir(filesDir, 0o755))
	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(filesDir, link))

	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{filesDir: link + "/../link"})

	want, err := filepath.EvalSymlinks(filesDir)
	require.NoError(t, err)
	assert.Equal(t, want, b.FilesDir())
	assert.Equal(t, want, engine.fileDir)
	assert.Equal(t, "Realm", b.Name())
}

func TestNew_FilesDirError(t *testing.T) {
	_, err := New(context.Background(), &fakeEngine{}, &fakeHost{err: errors.New("no context")})
	assert.ErrorIs(t, err, domain.ErrFilesDir)

	_, err = New(context.Background(), &fakeEngine{}, &fakeHost{filesDir: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, domain.ErrFilesDir)
}

func TestInitialize_SetsUpFlushAndSendsAnalyticsOnce(t *testing.T) {
	var flag atomic.Bool
	mark := func() bool { return flag.CompareAndSwap(false, true) }
	sender := &recordingSender{}

	invoker := ports.CallInvokerFunc(func(fn func()) { fn() })
	engine := &fakeEngine{}
	b1 := newTestBridge(t, engine, &fakeHost{invoker: invoker},
		WithAnalytics(sender), WithAnalyticsMarker(mark), WithVersion("1.2.3"))
	b2 := newTestBridge(t, &fakeEngine{}, &fakeHost{invoker: invoker},
		WithAnalytics(sender), WithAnalyticsMarker(mark))

	require.NoError(t, b1.Initialize(context.Background()))
	require.NoError(t, b2.Initialize(context.Background()))

	assert.NotNil(t, engine.invoker)
	require.Len(t, sender.events, 1)
	assert.Equal(t, "1.2.3", sender.events[0].Version)
}

func TestInitialize_NoInvoker(t *testing.T) {
	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{})

	require.NoError(t, b.Initialize(context.Background()))
	assert.Nil(t, engine.invoker)
}

func TestConstants_InjectedContext(t *testing.T) {
	engine := &fakeEngine{injected: true}
	b := newTestBridge(t, engine, &fakeHost{})

	constants, err := b.Constants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, constants)
	assert.NotNil(t, constants)
	assert.Equal(t, lifecycle.StateStopped, b.State())
	assert.Zero(t, engine.debugContexts)
	assert.Empty(t, b.DebugServer().Addr())
}

func TestConstants_StartsDebugBridge(t *testing.T) {
	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{})

	constants, err := b.Constants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.20"}, constants[ConstDebugHosts])
	assert.Equal(t, b.DebugServer().Port(), constants[ConstDebugPort])
	assert.Equal(t, lifecycle.StateRunning, b.State())
	assert.Equal(t, 1, engine.debugContexts)

	// The server forwards posted commands to the engine.
	url := "http://" + b.DebugServer().Addr() + "/create_session"
	resp, err := http.Post(url, "application/json", strings.NewReader(`[1]`))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"cmd":"/create_session","args":[1]}`, string(body))
	assert.Equal(t, "http://localhost:8081", resp.Header.Get("Access-Control-Allow-Origin"))

	// The worker polls the engine.
	require.Eventually(t, func() bool { return engine.polls.Load() > 0 }, time.Second, time.Millisecond)
}

func TestConstants_SecondCallReusesServer(t *testing.T) {
	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{})

	first, err := b.Constants(context.Background())
	require.NoError(t, err)
	addr := b.DebugServer().Addr()

	second, err := b.Constants(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, addr, b.DebugServer().Addr())
	assert.Equal(t, 1, engine.debugContexts)
}

func TestConstants_RereadsDebugHosts(t *testing.T) {
	lister := &switchingInterfaces{}
	lister.Set(devenv.Interface{Name: "wlan0", Up: true, Addrs: []net.IP{net.ParseIP("192.168.1.20")}})
	repo := state.NewFileRepository(t.TempDir())
	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{}, WithInterfaceLister(lister), WithStateRepository(repo))

	first, err := b.Constants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.20"}, first[ConstDebugHosts])

	lister.Set(devenv.Interface{Name: "wlan0", Up: true, Addrs: []net.IP{net.ParseIP("10.0.0.9")}})
	second, err := b.Constants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, second[ConstDebugHosts])
	assert.Equal(t, first[ConstDebugPort], second[ConstDebugPort])
	assert.Equal(t, 1, engine.debugContexts)

	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, st.DebugHosts)
}

func TestConstants_EmulatorUsesLocalhost(t *testing.T) {
	host := &fakeHost{device: devenv.DeviceInfo{Fingerprint: "generic/sdk_gphone_x86/generic_x86"}}
	b := newTestBridge(t, &fakeEngine{}, host)

	constants, err := b.Constants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, constants[ConstDebugHosts])
}

func TestConstants_ServerStartFailureIsNotFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{}, WithDebugAddress("127.0.0.1", port))

	constants, err := b.Constants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, port, constants[ConstDebugPort])
	assert.Empty(t, b.DebugServer().Addr())
	assert.Equal(t, lifecycle.StateRunning, b.State())
}

func TestDestroy_StopsDebugBridge(t *testing.T) {
	engine := &fakeEngine{}
	repo := state.NewFileRepository(t.TempDir())
	b := newTestBridge(t, engine, &fakeHost{}, WithStateRepository(repo))

	_, err := b.Constants(context.Background())
	require.NoError(t, err)

	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Running)
	assert.Equal(t, b.FilesDir(), st.FilesDir)

	require.NoError(t, b.Destroy(context.Background()))
	assert.Equal(t, lifecycle.StateStopped, b.State())
	assert.Empty(t, b.DebugServer().Addr())
	assert.Equal(t, 1, engine.cleared)

	polls := engine.polls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, polls, engine.polls.Load())

	st, err = repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Running)
	assert.False(t, st.StoppedAt.IsZero())
}

func TestDestroy_WithoutConstants(t *testing.T) {
	engine := &fakeEngine{injected: true}
	b := newTestBridge(t, engine, &fakeHost{})

	require.NoError(t, b.Destroy(context.Background()))
	assert.Equal(t, 1, engine.cleared)
	assert.Equal(t, lifecycle.StateStopped, b.State())
}

func TestConstants_RestartAfterDestroy(t *testing.T) {
	engine := &fakeEngine{}
	b := newTestBridge(t, engine, &fakeHost{})

	_, err := b.Constants(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.Destroy(context.Background()))

	_, err = b.Constants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, engine.debugContexts)
	assert.NotEmpty(t, b.DebugServer().Addr())
}

func TestWorker_StopsWhenEngineDone(t *testing.T) {
	engine := &fakeEngine{}
	engine.taskDone.Store(true)
	b := newTestBridge(t, engine, &fakeHost{})

	_, err := b.Constants(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return engine.polls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), engine.polls.Load())
}
