package utils

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestListenHTTP(t *testing.T) {
	port := freePort(t)
	srv := &http.Server{
		Addr: fmt.Sprintf("127.0.0.1:%d", port),
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong"))
		}),
		ReadHeaderTimeout: time.Second,
	}

	errChan, closer, gracefulCloser, err := ListenHTTP(srv, testLogger())
	require.NoError(t, err)
	defer closer()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", port))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	gracefulCloser()

	select {
	case err, ok := <-errChan:
		assert.False(t, ok, "unexpected serve error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("error channel not closed after shutdown")
	}
}

func TestListenHTTPPortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	srv := &http.Server{Addr: l.Addr().String(), ReadHeaderTimeout: time.Second}
	_, _, _, err = ListenHTTP(srv, testLogger())
	assert.Error(t, err)
}
