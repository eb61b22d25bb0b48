package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSender_Send(t *testing.T) {
	var got Event
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	ev := NewEvent("1.2.3")
	require.NoError(t, NewHTTPSender(ts.URL, ts.Client(), nil).Send(context.Background(), ev))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, ev, got)
	assert.Len(t, got.AnonymousID, 64)
	assert.NotContains(t, got.AnonymousID, hostname())
}

func TestHTTPSender_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := NewHTTPSender(ts.URL, nil, nil).Send(context.Background(), NewEvent("dev"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestEnabled(t *testing.T) {
	t.Setenv(DisableEnv, "")
	assert.False(t, Enabled(""))
	assert.True(t, Enabled("https://analytics.example/ping"))

	t.Setenv(DisableEnv, "1")
	assert.False(t, Enabled("https://analytics.example/ping"))
}

func TestMarkSent_SingleTransition(t *testing.T) {
	sent.Store(false)
	t.Cleanup(func() { sent.Store(false) })

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if MarkSent() {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.True(t, Sent())
	assert.False(t, MarkSent())
}
