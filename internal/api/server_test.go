package api_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/api"
	"github.com/wonny/asx-screener/internal/api/handlers"
	"github.com/wonny/asx-screener/internal/api/session"
	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/pkg/config"
	"github.com/wonny/asx-screener/pkg/logger"
)

type staticSource struct{ snap *contracts.Snapshot }

func (s staticSource) Latest(ctx context.Context) (*contracts.Snapshot, error) { return s.snap, nil }

func (s staticSource) Summary(ctx context.Context, snap *contracts.Snapshot) contracts.Summary {
	return snap.Summarize()
}

func newServer(t *testing.T) (*api.Server, *handlers.SessionHandler) {
	t.Helper()
	log := logger.NewNop()
	source := staticSource{snap: &contracts.Snapshot{Records: []contracts.Record{
		{Symbol: "ASX:BHP", Close: contracts.Float(45)},
		{Symbol: "ASX:CBA", Close: contracts.Float(120)},
	}}}

	screen := handlers.NewScreenHandler(source, nil, 50, log)
	sessions := handlers.NewSessionHandler(source, session.NewStore(time.Minute), nil, nil, 50, log)
	srv := api.New(&config.Config{Port: "0", Env: "development"}, log, api.NewRouter(screen, sessions, log), sessions)
	return srv, sessions
}

func TestServer_AddrBeforeListen(t *testing.T) {
	srv, _ := newServer(t)
	assert.Nil(t, srv.Addr())

	require.NoError(t, srv.Listen())
	require.NotNil(t, srv.Addr())
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestServer_ShutdownClosesSessionWebsockets(t *testing.T) {
	srv, sessions := newServer(t)
	require.NoError(t, srv.Listen())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	host := "127.0.0.1:" + strconv.Itoa(srv.Addr().(*net.TCPAddr).Port)

	resp, err := http.Post("http://"+host+"/api/sessions", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+host+"/api/sessions/"+created.ID+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// the first frame is sent once the socket is registered
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.OpenConnections())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-errCh)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
