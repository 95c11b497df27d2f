package recon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parthpandya1729/giarecon/internal/mapping"
	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedClient(baseURL string) *Client {
	c := NewClient(testConfig(baseURL))
	c.session.token = "test-token"
	c.session.expiresAt = time.Now().Add(time.Hour)
	return c
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOperationsRequireValidToken(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()
	file1 := writeTempFile(t, "a.xlsx", "a")
	file2 := writeTempFile(t, "b.xlsx", "b")

	checks := []struct {
		name string
		call func() error
	}{
		{"upload", func() error { _, err := client.UploadFiles(ctx, file1, file2, "cfg"); return err }},
		{"mapping", func() error { _, err := client.SetFieldMapping(ctx, "ws", "cfg", model.MappingDocument{}); return err }},
		{"run", func() error { _, err := client.RunReconciliation(ctx, "cfg", file1, file2); return err }},
		{"status", func() error { _, err := client.CheckStatus(ctx, "ws"); return err }},
		{"download", func() error {
			_, err := client.DownloadResults(ctx, "ws", filepath.Join(t.TempDir(), "out.xlsx"))
			return err
		}},
	}

	for _, check := range checks {
		t.Run(check.name, func(t *testing.T) {
			err := check.call()
			require.Error(t, err)
			e, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.KindPrecondition, e.Kind)
			assert.ErrorIs(t, err, errors.ErrNotAuthenticated)
		})
	}

	assert.Equal(t, int64(0), requests.Load(), "unauthenticated calls must not reach the network")
}

func TestUploadFilesMissingFile(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := authedClient(server.URL)
	missing := filepath.Join(t.TempDir(), "nope.xlsx")
	existing := writeTempFile(t, "b.xlsx", "b")

	_, err := client.UploadFiles(context.Background(), missing, existing, "cfg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
	assert.ErrorIs(t, err, errors.ErrFileNotFound)

	_, err = client.UploadFiles(context.Background(), existing, missing, "cfg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)

	assert.Equal(t, int64(0), requests.Load())
}

func TestUploadFilesSuccess(t *testing.T) {
	file1 := writeTempFile(t, "samsung.xlsx", "samsung-bytes")
	file2 := writeTempFile(t, "bank.xlsx", "bank-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/upload", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Samsung_Dec_2025", r.PostFormValue("config_name"))

		for field, want := range map[string]string{"file1": "samsung-bytes", "file2": "bank-bytes"} {
			f, header, err := r.FormFile(field)
			require.NoError(t, err)
			data, err := io.ReadAll(f)
			f.Close()
			require.NoError(t, err)
			assert.Equal(t, want, string(data))
			assert.Equal(t, spreadsheetMIME, header.Header.Get("Content-Type"))
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"workspace_id": "ws-42",
			"config_id":    "cfg-7",
			"message":      "uploaded",
		})
	}))
	defer server.Close()

	result, err := authedClient(server.URL).UploadFiles(context.Background(), file1, file2, "Samsung_Dec_2025")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ws-42", result.WorkspaceID)
	assert.Equal(t, "cfg-7", result.ConfigID)
	assert.Equal(t, "uploaded", result.Message)
}

func TestSetFieldMappingSendsDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/field-mapping/ws-42/cfg-7", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var doc model.MappingDocument
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.Len(t, doc.Mappings, 10)
		assert.True(t, doc.Mappings[0].IsPrimaryKey)

		json.NewEncoder(w).Encode(map[string]string{"message": "mapped"})
	}))
	defer server.Close()

	doc, err := mapping.Template("samsung")
	require.NoError(t, err)

	result, err := authedClient(server.URL).SetFieldMapping(context.Background(), "ws-42", "cfg-7", doc)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "mapped", result.Message)
}

func TestRemoteRejectionCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer server.Close()

	client := authedClient(server.URL)
	ctx := context.Background()
	file1 := writeTempFile(t, "a.xlsx", "a")
	file2 := writeTempFile(t, "b.xlsx", "b")

	calls := []func() error{
		func() error { _, err := client.UploadFiles(ctx, file1, file2, "cfg"); return err },
		func() error { _, err := client.SetFieldMapping(ctx, "ws", "cfg", model.MappingDocument{}); return err },
		func() error { _, err := client.RunReconciliation(ctx, "cfg", file1, file2); return err },
		func() error { _, err := client.CheckStatus(ctx, "ws"); return err },
		func() error {
			_, err := client.DownloadResults(ctx, "ws", filepath.Join(t.TempDir(), "o.xlsx"))
			return err
		},
	}

	for _, call := range calls {
		err := call()
		require.Error(t, err)
		e, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, errors.KindRemote, e.Kind)
		assert.Contains(t, e.Message, "401")
		assert.Equal(t, map[string]interface{}{"detail": "token expired"}, e.Detail)
	}
}

func TestRemoteRejectionRawTextDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := authedClient(server.URL).CheckStatus(context.Background(), "ws")
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "boom", e.Detail)
}

func TestRunReconciliationReturnsNewWorkspace(t *testing.T) {
	file1 := writeTempFile(t, "a.xlsx", "a")
	file2 := writeTempFile(t, "b.xlsx", "b")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auto-recon/cfg-7", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		_, _, err := r.FormFile("file1")
		require.NoError(t, err)
		_, _, err = r.FormFile("file2")
		require.NoError(t, err)

		json.NewEncoder(w).Encode(map[string]string{"workspace_id": "ws-99"})
	}))
	defer server.Close()

	result, err := authedClient(server.URL).RunReconciliation(context.Background(), "cfg-7", file1, file2)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ws-99", result.WorkspaceID)
	assert.Equal(t, "Reconciliation started successfully", result.Message)
}

func TestCheckStatusDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws-1/status", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	result, err := authedClient(server.URL).CheckStatus(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, model.StatusUnknown, result.Status)
	assert.Equal(t, 0, result.Progress)
}

func TestDownloadResultsCreatesDirectoryAndReportsSize(t *testing.T) {
	payload := make([]byte, 20000) // larger than one 8 KiB chunk
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws-1/download", r.URL.Path)
		w.Write(payload)
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "results", "december", "out.xlsx")
	result, err := authedClient(server.URL).DownloadResults(context.Background(), "ws-1", outputPath)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, filepath.IsAbs(result.FilePath))
	assert.Equal(t, int64(len(payload)), result.FileSize)

	written, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestCheckStatusMalformedBodyIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"progress":"high"}`))
	}))
	defer server.Close()

	_, err := authedClient(server.URL).CheckStatus(context.Background(), "ws-1")
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindRemote, e.Kind)
	assert.Equal(t, `{"progress":"high"}`, e.Detail)
}

func TestDownloadResultsBareFilenameWritesToWorkingDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("result-bytes"))
	}))
	defer server.Close()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	result, err := authedClient(server.URL).DownloadResults(context.Background(), "ws-1", "out.xlsx")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(result.FilePath))

	written, err := os.ReadFile("out.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "result-bytes", string(written))
}

func TestDownloadTruncatedStreamIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()

		// Drop the connection mid-transfer so the client's next read fails.
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "out.xlsx")
	_, err := authedClient(server.URL).DownloadResults(context.Background(), "ws-1", outputPath)
	require.Error(t, err)
	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindNetwork, e.Kind)
	assert.Contains(t, e.Message, "network error during download")
}

// Full workflow against a fake recon server: authenticate, upload, map,
// run, poll to completion, download.
func TestWorkflowEndToEnd(t *testing.T) {
	resultBytes := []byte("reconciled-spreadsheet-bytes")
	statusPolls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"e2e-token","expires_in":3600}`))
	})
	mux.HandleFunc("/workspaces/upload", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"workspace_id": "ws-up", "config_id": "cfg-1"})
	})
	mux.HandleFunc("/field-mapping/ws-up/cfg-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("/auto-recon/cfg-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"workspace_id": "ws-run"})
	})
	mux.HandleFunc("/workspaces/ws-run/status", func(w http.ResponseWriter, r *http.Request) {
		statusPolls++
		if statusPolls < 3 {
			fmt.Fprintf(w, `{"status":"running","progress":%d}`, statusPolls*40)
			return
		}
		w.Write([]byte(`{"status":"completed","progress":100}`))
	})
	mux.HandleFunc("/workspaces/ws-run/download", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer e2e-token", r.Header.Get("Authorization"))
		w.Write(resultBytes)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	ctx := context.Background()
	file1 := writeTempFile(t, "samsung.xlsx", "s")
	file2 := writeTempFile(t, "bank.xlsx", "b")

	_, err := client.Session().Authenticate(ctx, "user", "pass")
	require.NoError(t, err)

	upload, err := client.UploadFiles(ctx, file1, file2, "Samsung_Dec_2025")
	require.NoError(t, err)

	doc, err := mapping.Template("samsung")
	require.NoError(t, err)
	_, err = client.SetFieldMapping(ctx, upload.WorkspaceID, upload.ConfigID, doc)
	require.NoError(t, err)

	run, err := client.RunReconciliation(ctx, upload.ConfigID, file1, file2)
	require.NoError(t, err)
	assert.NotEqual(t, upload.WorkspaceID, run.WorkspaceID)

	var status *model.StatusResult
	for i := 0; i < 5; i++ {
		status, err = client.CheckStatus(ctx, run.WorkspaceID)
		require.NoError(t, err)
		if status.Status == model.StatusCompleted {
			break
		}
		assert.Equal(t, model.StatusRunning, status.Status)
	}
	assert.Equal(t, model.StatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)

	outputPath := filepath.Join(t.TempDir(), "out", "results.xlsx")
	download, err := client.DownloadResults(ctx, run.WorkspaceID, outputPath)
	require.NoError(t, err)
	assert.Equal(t, int64(len(resultBytes)), download.FileSize)

	written, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, resultBytes, written)
}
