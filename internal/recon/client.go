package recon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/parthpandya1729/giarecon/internal/config"
	"github.com/parthpandya1729/giarecon/internal/logger"
	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	spreadsheetMIME   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	downloadChunkSize = 8192
)

// Client wraps the multi-step recon workflow: upload files, configure field
// mappings, trigger a run, poll status, download the result artifact. Each
// step independently requires a valid session token; the remote server is the
// source of truth for call ordering and job state.
type Client struct {
	cfg     *config.Config
	session *Session

	// metaClient serves login/mapping/status calls; transferClient serves
	// uploads and downloads, which need a much larger timeout.
	metaClient     *http.Client
	transferClient *http.Client

	log zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:     cfg,
		session: NewSession(cfg),
		metaClient: &http.Client{
			Timeout: time.Duration(cfg.ReconAPI.MetadataTimeout),
		},
		transferClient: &http.Client{
			Timeout: time.Duration(cfg.ReconAPI.TransferTimeout),
		},
		log: logger.Get(),
	}
}

// Session exposes the client's token manager.
func (c *Client) Session() *Session {
	return c.session
}

// UploadFiles sends both spreadsheets to the recon API, creating a workspace
// and a named configuration for the subsequent mapping and run steps.
func (c *Client) UploadFiles(ctx context.Context, file1Path, file2Path, configName string) (*model.UploadResult, error) {
	if err := checkFile(file1Path); err != nil {
		return nil, err
	}
	if err := checkFile(file2Path); err != nil {
		return nil, err
	}

	authHeader, err := c.session.AuthHeader()
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("file1", file1Path).Str("file2", file2Path).Msg("Uploading files")

	endpoint := c.cfg.ReconAPI.BaseURL + "/workspaces/upload"
	resp, err := c.postMultipart(ctx, endpoint, authHeader,
		[]filePart{{"file1", file1Path}, {"file2", file2Path}},
		map[string]string{"config_name": configName})
	if err != nil {
		if e, ok := errors.As(err); ok {
			return nil, e
		}
		return nil, errors.Network(err, "network error during upload")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Network(err, "failed to read upload response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.Error().Int("status", resp.StatusCode).Msg("Upload failed")
		return nil, errors.Remote(fmt.Sprintf("upload failed with status %d", resp.StatusCode), parseDetail(body))
	}

	var wsResp model.WorkspaceResponse
	if err := decodeJSON(body, &wsResp); err != nil {
		return nil, errors.Remote("failed to decode upload response", string(body))
	}
	if wsResp.Message == "" {
		wsResp.Message = "Files uploaded successfully"
	}

	c.log.Info().Str("workspace_id", wsResp.WorkspaceID).Str("config_id", wsResp.ConfigID).Msg("Files uploaded")

	return &model.UploadResult{
		Success:     true,
		WorkspaceID: wsResp.WorkspaceID,
		ConfigID:    wsResp.ConfigID,
		Message:     wsResp.Message,
	}, nil
}

// SetFieldMapping posts the mapping document for a workspace/config pair.
func (c *Client) SetFieldMapping(ctx context.Context, workspaceID, configID string, doc model.MappingDocument) (*model.MappingResult, error) {
	authHeader, err := c.session.AuthHeader()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.PreconditionWrap(err, "failed to marshal mapping document")
	}

	endpoint := fmt.Sprintf("%s/field-mapping/%s/%s", c.cfg.ReconAPI.BaseURL, workspaceID, configID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Network(err, "failed to create field mapping request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)

	c.log.Info().Str("workspace_id", workspaceID).Str("config_id", configID).Msg("Setting field mappings")

	resp, err := c.metaClient.Do(req)
	if err != nil {
		return nil, errors.Network(err, "network error during field mapping")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Network(err, "failed to read field mapping response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.Error().Int("status", resp.StatusCode).Msg("Field mapping failed")
		return nil, errors.Remote(fmt.Sprintf("field mapping failed with status %d", resp.StatusCode), parseDetail(body))
	}

	result := &model.MappingResult{Success: true, Message: "Field mappings configured successfully"}
	var msgResp struct {
		Message string `json:"message"`
	}
	if decodeJSON(body, &msgResp) == nil && msgResp.Message != "" {
		result.Message = msgResp.Message
	}
	return result, nil
}

// RunReconciliation triggers the auto-recon endpoint for a configuration.
// The endpoint re-uploads both source files rather than referencing the
// earlier upload, and may mint a workspace id distinct from the upload's.
func (c *Client) RunReconciliation(ctx context.Context, configID, file1Path, file2Path string) (*model.RunResult, error) {
	if err := checkFile(file1Path); err != nil {
		return nil, err
	}
	if err := checkFile(file2Path); err != nil {
		return nil, err
	}

	authHeader, err := c.session.AuthHeader()
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("config_id", configID).Msg("Running reconciliation")

	endpoint := c.cfg.ReconAPI.BaseURL + "/auto-recon/" + configID
	resp, err := c.postMultipart(ctx, endpoint, authHeader,
		[]filePart{{"file1", file1Path}, {"file2", file2Path}}, nil)
	if err != nil {
		if e, ok := errors.As(err); ok {
			return nil, e
		}
		return nil, errors.Network(err, "network error during reconciliation")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Network(err, "failed to read reconciliation response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.Error().Int("status", resp.StatusCode).Msg("Reconciliation failed")
		return nil, errors.Remote(fmt.Sprintf("reconciliation failed with status %d", resp.StatusCode), parseDetail(body))
	}

	var wsResp model.WorkspaceResponse
	if err := decodeJSON(body, &wsResp); err != nil {
		return nil, errors.Remote("failed to decode reconciliation response", string(body))
	}
	if wsResp.Message == "" {
		wsResp.Message = "Reconciliation started successfully"
	}

	c.log.Info().Str("workspace_id", wsResp.WorkspaceID).Msg("Reconciliation started")

	return &model.RunResult{
		Success:     true,
		WorkspaceID: wsResp.WorkspaceID,
		Message:     wsResp.Message,
	}, nil
}

// CheckStatus polls the server-side job state for a workspace. Status
// defaults to "unknown" and progress to 0 when the server omits them.
func (c *Client) CheckStatus(ctx context.Context, workspaceID string) (*model.StatusResult, error) {
	authHeader, err := c.session.AuthHeader()
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/workspaces/%s/status", c.cfg.ReconAPI.BaseURL, workspaceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Network(err, "failed to create status request")
	}
	req.Header.Set("Authorization", authHeader)

	c.log.Debug().Str("workspace_id", workspaceID).Msg("Checking status")

	resp, err := c.metaClient.Do(req)
	if err != nil {
		return nil, errors.Network(err, "network error during status check")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Network(err, "failed to read status response")
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Msg("Status check failed")
		return nil, errors.Remote(fmt.Sprintf("status check failed with status %d", resp.StatusCode), parseDetail(body))
	}

	var statusResp model.StatusResponse
	if err := decodeJSON(body, &statusResp); err != nil {
		return nil, errors.Remote("failed to decode status response", string(body))
	}
	if statusResp.Status == "" {
		statusResp.Status = model.StatusUnknown
	}

	c.log.Debug().Str("status", statusResp.Status).Int("progress", statusResp.Progress).Msg("Status checked")

	return &model.StatusResult{
		Success:  true,
		Status:   statusResp.Status,
		Progress: statusResp.Progress,
		Message:  statusResp.Message,
	}, nil
}

// DownloadResults streams the result spreadsheet for a workspace to
// outputPath, creating the directory tree when needed. The body is written
// in fixed-size chunks so memory stays bounded regardless of file size.
func (c *Client) DownloadResults(ctx context.Context, workspaceID, outputPath string) (*model.DownloadResult, error) {
	authHeader, err := c.session.AuthHeader()
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.IO(err, "failed to create output directory")
		}
	}

	endpoint := fmt.Sprintf("%s/workspaces/%s/download", c.cfg.ReconAPI.BaseURL, workspaceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Network(err, "failed to create download request")
	}
	req.Header.Set("Authorization", authHeader)

	c.log.Info().Str("workspace_id", workspaceID).Str("output", outputPath).Msg("Downloading results")

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return nil, errors.Network(err, "network error during download")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error().Int("status", resp.StatusCode).Msg("Download failed")
		return nil, errors.Remote(fmt.Sprintf("download failed with status %d", resp.StatusCode), parseDetail(body))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, errors.IO(err, "failed to create output file")
	}

	written, err := streamBody(out, resp.Body)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = errors.IO(closeErr, "failed to write results to disk")
	}
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		absPath = outputPath
	}

	c.log.Info().Int64("file_size", written).Msg("Results downloaded")

	return &model.DownloadResult{
		Success:  true,
		FilePath: absPath,
		FileSize: written,
	}, nil
}

// streamBody copies the response body to the output file in fixed-size
// chunks. Read-side failures come from the connection and write-side
// failures from the disk, so each side is tagged separately.
func streamBody(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, downloadChunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, errors.IO(writeErr, "failed to write results to disk")
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, errors.Network(readErr, "network error during download")
		}
	}
}

type filePart struct {
	field string
	path  string
}

// postMultipart streams a multipart form with the given file parts and
// fields, piping file contents straight into the request body.
func (c *Client) postMultipart(ctx context.Context, endpoint, authHeader string, files []filePart, fields map[string]string) (*http.Response, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeParts(writer, files, fields)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			err = errors.IO(err, "failed to stream upload source")
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", authHeader)

	return c.transferClient.Do(req)
}

func writeParts(writer *multipart.Writer, files []filePart, fields map[string]string) error {
	for _, fp := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, filepath.Base(fp.path)))
		header.Set("Content-Type", spreadsheetMIME)

		part, err := writer.CreatePart(header)
		if err != nil {
			return err
		}

		f, err := os.Open(fp.path)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}
	return nil
}

func checkFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.PreconditionWrap(errors.ErrFileNotFound, "file not found: "+path)
	}
	return nil
}

func decodeJSON(body []byte, v interface{}) error {
	return json.Unmarshal(body, v)
}

// parseDetail keeps the server's error payload structured when it is valid
// JSON and falls back to the raw text otherwise.
func parseDetail(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var detail interface{}
	if err := json.Unmarshal(body, &detail); err != nil {
		return string(body)
	}
	return detail
}
