package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// ReadJSONResponse asserts a 200 response and decodes its JSON body into v.
func ReadJSONResponse(t testing.TB, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body %q)", w.Code, w.Body.String())
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
}

// CreateRequest creates an HTTP request with an optional body and headers.
// A string or []byte body is sent verbatim; anything else is JSON encoded.
func CreateRequest(method, path string, body any, headers map[string]string) *http.Request {
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		jsonData, _ := json.Marshal(b)
		reader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}
