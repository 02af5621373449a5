package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
)

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/planos/plan-1/memoria", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"memoria":"MEMORIA DESCRIPTIVA","generation_id":"gen-1","artifact_id":"Memoria_plan-1_x.docx","template_version":"sha256:abc","duration_ms":42}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Generate(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, "MEMORIA DESCRIPTIVA", result.Memoria)
	assert.Equal(t, "gen-1", result.GenerationID)
	assert.Equal(t, "Memoria_plan-1_x.docx", result.ArtifactID)
	assert.Equal(t, int64(42), result.DurationMS)
}

func TestGenerateNonOKIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"plan not found","code":"not_found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Generate(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNetwork))
	assert.Contains(t, err.Error(), "plan not found")
}

func TestGenerateConnectionRefused(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(200*time.Millisecond))
	_, err := c.Generate(context.Background(), "plan-1")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNetwork))
}

func TestDownload(t *testing.T) {
	payload := []byte("docx bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/planos/plan-1/memoria/download", r.URL.Path)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	n, err := New(srv.URL).Download(context.Background(), "plan-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestDownloadConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"memoria not yet published","code":"conflict"}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	_, err := New(srv.URL).Download(context.Background(), "plan-1", &buf)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNetwork))
	assert.Contains(t, err.Error(), "not yet published")
	assert.Zero(t, buf.Len())
}

func TestContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).Generate(ctx, "plan-1")
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNetwork))
}
