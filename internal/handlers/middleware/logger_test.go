package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type logCall struct {
	level string
	msg   string
	args  []any
}

// Records every call
type fakeLogger struct {
	calls []logCall
}

func (l *fakeLogger) Info(msg string, v ...any) { l.calls = append(l.calls, logCall{"info", msg, v}) }
func (l *fakeLogger) Warn(msg string, v ...any) { l.calls = append(l.calls, logCall{"warn", msg, v}) }

func TestLoggerMiddleware(t *testing.T) {
	logger := &fakeLogger{}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, err := w.Write([]byte("hi"))
		require.NoError(t, err, "should write response")
	})

	middleware := LoggerMiddleware(logger)
	srv := httptest.NewServer(middleware(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/test")
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	require.Equalf(t, http.StatusTeapot, resp.StatusCode, "should return status Teapot. Resp: %s", string(body))
	require.Equal(t, "hi", string(body), "should return 'hi' in response")

	require.Len(t, logger.calls, 1, "logger should be called once")
	call := logger.calls[0]
	require.Equal(t, "info", call.level)
	require.Equal(t, "got HTTP request", call.msg, "logger should log 'got HTTP request'")
	args := call.args
	require.Len(t, args, 10, "logger should log 10 fields")
	require.Equal(t, "method", args[0])
	require.Equal(t, "GET", args[1])
	require.Equal(t, "uri", args[2])
	require.Equal(t, "/test", args[3])
	require.Equal(t, "duration", args[4])
	require.NotEmpty(t, args[5], "duration should not be empty")
	require.Equal(t, "status", args[6])
	require.Equal(t, http.StatusTeapot, args[7])
	require.Equal(t, "size", args[8])
	require.Equal(t, 2, args[9], "size should be 2 (length of 'hi')")
}

func TestLoggerMiddleware_ServerError(t *testing.T) {
	logger := &fakeLogger{}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	srv := httptest.NewServer(LoggerMiddleware(logger)(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/test")
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	require.Len(t, logger.calls, 1)
	require.Equal(t, "warn", logger.calls[0].level, "server errors should be logged with warn level")
	require.Equal(t, http.StatusInternalServerError, logger.calls[0].args[7])
}

func TestLoggerMiddleware_ImplicitStatus(t *testing.T) {
	logger := &fakeLogger{}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(LoggerMiddleware(logger)(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/test")
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, http.StatusOK, logger.calls[0].args[7], "superfluous WriteHeader should be ignored")
}
