package debugserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocket_RelaysCommands(t *testing.T) {
	proc := &recordingProcessor{}
	ts := httptest.NewServer(New(proc, Config{}, nil))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	exchange := func(msg string) string {
		require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(msg)))
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, `{"result":"/create_session"}`, exchange(`{"cmd":"/create_session","postData":"{}"}`))
	assert.Equal(t, "", exchange(`{"cmd":"/create_session"}`))
	assert.Equal(t, "", exchange(`not json`))

	assert.Equal(t, []call{{"/create_session", "{}"}}, proc.Calls())
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	ts := httptest.NewServer(New(&recordingProcessor{}, Config{}, nil))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := &websocket.DialOptions{HTTPHeader: map[string][]string{"Origin": {"http://evil.example"}}}
	_, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/", opts)
	assert.Error(t, err)
}

func TestWebSocket_StopClosesSessions(t *testing.T) {
	proc := &recordingProcessor{}
	srv := New(proc, Config{Host: "127.0.0.1"}, nil)
	require.NoError(t, srv.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+srv.Addr()+"/", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"cmd":"/ping","postData":"{}"}`)))
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"result":"/ping"}`, string(data))

	require.NoError(t, srv.Stop(ctx))

	// The write may still land in the local socket buffer; the read must not
	// produce a reply.
	_ = conn.Write(ctx, websocket.MessageText, []byte(`{"cmd":"/after_stop","postData":"{}"}`))
	_, _, err = conn.Read(ctx)
	assert.Error(t, err)
	assert.Equal(t, []call{{"/ping", "{}"}}, proc.Calls())
}
