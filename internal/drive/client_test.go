package drive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetfetch/meetfetch/internal/googleapi"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&ClientConfig{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
	}, server.Client())
	require.NoError(t, err)
	return client
}

func TestExportPlainText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/drive/v3/files/doc-123/export", r.URL.Path)
		require.Equal(t, "text/plain", r.URL.Query().Get("mimeType"))
		fmt.Fprint(w, "Speaker 1: hello\nSpeaker 2: world\n")
	}))

	content, err := client.ExportPlainText(context.Background(), "doc-123")
	require.NoError(t, err)
	assert.Equal(t, "Speaker 1: hello\nSpeaker 2: world\n", content)
}

func TestExportPlainText_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":404,"status":"NOT_FOUND","message":"File not found: doc-123"}}`)
	}))

	_, err := client.ExportPlainText(context.Background(), "doc-123")
	require.Error(t, err)
	assert.True(t, googleapi.IsNotFound(err))
}

func TestExportPlainText_PermissionDenied(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"status":"PERMISSION_DENIED","message":"The user does not have sufficient permissions"}}`)
	}))

	_, err := client.ExportPlainText(context.Background(), "doc-123")
	require.Error(t, err)
	assert.True(t, googleapi.IsPermissionDenied(err))
}
