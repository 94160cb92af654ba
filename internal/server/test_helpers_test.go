package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"vibe-in-the-dark/internal/config"
	"vibe-in-the-dark/internal/fanout"
	"vibe-in-the-dark/internal/game"
	"vibe-in-the-dark/internal/generator"
	"vibe-in-the-dark/internal/session"
	"vibe-in-the-dark/internal/store"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type testApp struct {
	ts     *httptest.Server
	svc    *session.Service
	rooms  *fanout.Broker
	mu     sync.Mutex
	genErr error
}

func (a *testApp) failGenerator(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.genErr = err
}

// newTestApp wires the real service over a memory store with an echoing generator.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := &testApp{rooms: fanout.NewBroker(fanout.DefaultBuffer)}
	gen := generator.Func(func(_ context.Context, req generator.Request) (game.Artifact, error) {
		app.mu.Lock()
		err := app.genErr
		app.mu.Unlock()
		if err != nil {
			return game.Artifact{}, err
		}
		return game.Artifact{HTML: "<h1>" + req.Prompt + "</h1>"}, nil
	})
	app.svc = session.New(store.NewMemoryStore(), app.rooms, gen, session.Options{},
		session.WithRoomCloser(app.rooms.CloseRoom))
	srv := New(app.svc, app.rooms, config.Default())
	app.ts = newTestServer(t, srv.Handler())
	t.Cleanup(func() {
		app.ts.Close()
		app.svc.Close()
		app.rooms.Close()
	})
	return app
}
