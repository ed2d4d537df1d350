package httpmiddleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripPrefix(t *testing.T) {
	echoPath := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	})

	tests := []struct {
		name   string
		prefix string
		path   string
		want   string
	}{
		{"strips matching prefix", "/assistant", "/assistant/query", "/query"},
		{"exact prefix becomes root", "/assistant", "/assistant", "/"},
		{"trailing slash on prefix", "/assistant/", "/assistant/health", "/health"},
		{"non-matching prefix untouched", "/assistant", "/other/query", "/other/query"},
		{"partial segment untouched", "/assistant", "/assistants/query", "/assistants/query"},
		{"empty prefix does nothing", "", "/query", "/query"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			StripPrefix(tc.prefix)(echoPath).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.NoError(t, readErr)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too long")))
	var maxErr *http.MaxBytesError
	assert.True(t, errors.As(readErr, &maxErr))
}
