package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzqhbustb/colfile/storage/codec"
	"github.com/wzqhbustb/colfile/storage/format"
	"github.com/wzqhbustb/colfile/storage/jsontab"
)

const smokeJSON = `{"columns": [
	{"name": "mycol", "type": "int64", "values": [1, 2, 3]},
	{"name": "decimal", "type": "decimal(9,3)", "values": ["1.0", "2.0", null]}
]}`

func newTestServer() *HTTPServer {
	return New(Options{MaxBodyBytes: 1 << 20, Logger: zerolog.Nop()})
}

func do(s *HTTPServer, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(newTestServer(), http.MethodGet, "/hc", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := newTestServer()

	rec := do(s, http.MethodPost, "/v1/encode", []byte(smokeJSON))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, contentTypeTable, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "3", rec.Header().Get("X-Colfile-Rows"))
	encoded := rec.Body.Bytes()
	assert.Equal(t, format.Magic, encoded[:4])

	rec = do(s, http.MethodPost, "/v1/decode", encoded)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := jsontab.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	want, err := jsontab.Unmarshal([]byte(smokeJSON))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestEncodeCompressionParam(t *testing.T) {
	s := newTestServer()

	rec := do(s, http.MethodPost, "/v1/encode?compression=5", []byte(smokeJSON))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	info, err := codec.Inspect(rec.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, info.Header.HasFlag(format.FlagCompressed))

	rec = do(s, http.MethodPost, "/v1/encode?compression=42", []byte(smokeJSON))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/v1/encode?compression=high", []byte(smokeJSON))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemaHandler(t *testing.T) {
	s := newTestServer()
	encoded := do(s, http.MethodPost, "/v1/encode", []byte(smokeJSON)).Body.Bytes()

	rec := do(s, http.MethodPost, "/v1/schema", encoded)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint32(1), resp.Version)
	assert.Equal(t, "none", resp.Flags)
	assert.Equal(t, uint64(3), resp.Rows)
	assert.Len(t, resp.ContentID, 36)
	assert.Equal(t, []jsontab.FieldDoc{
		{Name: "mycol", Type: "int64"},
		{Name: "decimal", Type: "decimal(9,3)"},
	}, resp.Columns)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer()
	encoded := do(s, http.MethodPost, "/v1/encode", []byte(smokeJSON)).Body.Bytes()

	cases := []struct {
		name   string
		target string
		body   []byte
		status int
		kind   string
	}{
		{"bad json", "/v1/encode", []byte(`{`), http.StatusBadRequest, "InvalidArgument"},
		{"bad type", "/v1/encode", []byte(`{"columns":[{"name":"a","type":"int3","values":[]}]}`), http.StatusBadRequest, "UnsupportedType"},
		{"ragged", "/v1/encode", []byte(`{"columns":[{"name":"a","type":"int8","values":[1]},{"name":"b","type":"int8","values":[]}]}`), http.StatusBadRequest, "RowCountMismatch"},
		{"truncated", "/v1/decode", encoded[:len(encoded)-1], http.StatusUnprocessableEntity, "TruncatedInput"},
		{"bad magic", "/v1/schema", []byte("XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"), http.StatusUnprocessableEntity, "BadMagic"},
		{"too large", "/v1/decode", make([]byte, 2<<20), http.StatusRequestEntityTooLarge, "BodyTooLarge"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tc.target, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.kind, body.Error)
			assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), body.RequestID)
		})
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	s := New(Options{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)})

	rec := do(s, http.MethodGet, "/hc", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "req received")
	assert.Contains(t, out, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServeAndShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := newTestServer()
	done := make(chan error, 1)
	go func() { done <- s.Serve(listener) }()

	url := "http://" + listener.Addr().String() + "/hc"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
