package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-attackforge/internal/api"
	"github.com/tphakala/go-attackforge/internal/auth"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *api.Transport {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tr, err := api.NewTransport(server.URL+"/api/ss/", &auth.Credentials{APIKey: "test-key"}, nil)
	require.NoError(t, err)
	return tr
}

func TestRequote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain path", "library/assets", "library/assets"},
		{"existing query kept", "project/1/report/raw?excludeBinaries=true", "project/1/report/raw?excludeBinaries=true"},
		{"filter grammar", `a?q={ id: { $eq: "x" } }`, `a?q=%7B%20id:%20%7B%20$eq:%20%22x%22%20%7D%20%7D`},
		{"valid escape kept", "a%20b", "a%20b"},
		{"stray percent encoded", "100%", "100%25"},
		{"non-ascii", "café", "caf%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.Requote(tt.in))
		})
	}
}

func TestNewTransport(t *testing.T) {
	t.Run("trims trailing slash", func(t *testing.T) {
		tr, err := api.NewTransport("https://af.example.com/api/ss/", &auth.Credentials{APIKey: "k"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://af.example.com/api/ss", tr.BaseURL.String())
		assert.Equal(t, "https://af.example.com/api/ss/users", tr.ResolveURL("users"))
	})

	t.Run("requires credentials", func(t *testing.T) {
		_, err := api.NewTransport("https://af.example.com", nil, nil)
		require.Error(t, err)
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		_, err := api.NewTransport("://bad", &auth.Credentials{APIKey: "k"}, nil)
		require.Error(t, err)
	})
}

func TestTransport_DoJSON(t *testing.T) {
	t.Run("query survives the round trip", func(t *testing.T) {
		filter := `{ external_id: { $eq: "EXT-1" } }`
		tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/ss/library/assets", r.URL.Path)
			assert.Equal(t, filter, r.URL.Query().Get("q"))
			assert.Equal(t, "test-key", r.Header.Get("X-SSAPI-KEY"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, err := w.Write([]byte(`{"count":1}`))
			assert.NoError(t, err)
		})

		var out struct {
			Count int `json:"count"`
		}
		resp, err := tr.DoJSON(context.Background(), &api.Request{
			Method: http.MethodGet,
			URL:    "library/assets?q=" + filter,
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, out.Count)
	})

	t.Run("skips decoding on error status", func(t *testing.T) {
		tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, err := w.Write([]byte("not json"))
			assert.NoError(t, err)
		})

		var out map[string]any
		resp, err := tr.DoJSON(context.Background(), &api.Request{Method: http.MethodGet, URL: "users"}, &out)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, out)
	})

	t.Run("sends json body", func(t *testing.T) {
		tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"name":"web-01"}`, string(body))
			_, err = w.Write([]byte(`{}`))
			assert.NoError(t, err)
		})

		_, err := tr.DoJSON(context.Background(), &api.Request{
			Method: http.MethodPut,
			URL:    "library/asset/1",
			Body:   map[string]string{"name": "web-01"},
		}, nil)
		require.NoError(t, err)
	})
}

func TestTransport_Multipart(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		assert.Equal(t, "test-key", r.Header.Get("X-SSAPI-KEY"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "scan.txt", r.FormValue("description"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.Equal(t, "scan.txt", hdr.Filename)
		assert.Equal(t, "text/plain", hdr.Header.Get("Content-Type"))
		data, err := io.ReadAll(f)
		assert.NoError(t, err)
		assert.Equal(t, "evidence", string(data))

		_, err = w.Write([]byte(`{"status":"ok"}`))
		assert.NoError(t, err)
	})

	resp, err := tr.Do(context.Background(), &api.Request{
		Method: http.MethodPost,
		URL:    "vulnerability/v1/evidence",
		Multipart: &api.Multipart{
			FileName:    "scan.txt",
			ContentType: "text/plain",
			Content:     strings.NewReader("evidence"),
			Fields:      map[string]string{"description": "scan.txt"},
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Body))
}
