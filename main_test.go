package main

import (
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/newsroom-backend/api"
)

func runServer(t *testing.T, addr string, signals chan os.Signal) <-chan error {
	t.Helper()
	server := api.Server{Server: &http.Server{Addr: addr, Handler: http.NotFoundHandler()}}
	done := make(chan error, 1)
	go func() { done <- serveUntilStopped(server, signals, time.Second) }()
	return done
}

func TestServeUntilStoppedOnSignal(t *testing.T) {
	signals := make(chan os.Signal, 1)
	done := runServer(t, "127.0.0.1:0", signals)

	signals <- syscall.SIGTERM

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after a signal")
	}
}

func TestServeUntilStoppedOnListenError(t *testing.T) {
	signals := make(chan os.Signal, 1)
	done := runServer(t, "127.0.0.1:-1", signals)

	select {
	case err := <-done:
		require.Error(t, err)
		assert.NotErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("listen error was not reported")
	}

	// a late signal must not block or panic
	signals <- syscall.SIGINT
}
