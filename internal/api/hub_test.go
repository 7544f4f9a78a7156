package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davorpavlov/props-engine/internal/models"
)

func samplePropAnalysis() models.PropAnalysis {
	return models.PropAnalysis{
		PlayerID:        203,
		PlayerName:      "Alpha Guard",
		PropType:        models.PropPoints,
		PropLine:        27.5,
		ProjectedValue:  30.1,
		ConfidenceScore: 0.71,
		Recommendation:  models.RecommendationOver,
		GeneratedAt:     time.Now().UTC(),
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc, chan struct{}) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	return hub, cancel, stopped
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestHubConnectAndShutdown(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Type)
	assert.Equal(t, 1, hub.ClientCount())

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubDisconnectAfterShutdown(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	// A pump reporting a dead connection after the hub has stopped must
	// return instead of waiting on the unregister channel forever.
	finished := make(chan struct{})
	go func() {
		hub.disconnect(&client{send: make(chan StreamMessage)})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("disconnect blocked after hub shutdown")
	}
}

func TestHubServeWSAfterShutdown(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dialHub(t, srv)
	defer conn.Close()

	// The stopped hub rejects the client, so the connection is closed
	// without a welcome message and nothing is registered.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg StreamMessage
	assert.Error(t, conn.ReadJSON(&msg))
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub(nil)

	// Nobody is draining broadcast, so this exercises the overflow path.
	assert.NotPanics(t, func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.Publish(samplePropAnalysis())
		}
	})
}
