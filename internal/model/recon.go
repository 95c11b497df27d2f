package model

// TokenResponse is the login payload returned by the recon API.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// WorkspaceResponse is returned by the upload and auto-recon endpoints.
type WorkspaceResponse struct {
	WorkspaceID string `json:"workspace_id"`
	ConfigID    string `json:"config_id"`
	Message     string `json:"message"`
}

// StatusResponse is returned by the workspace status endpoint.
type StatusResponse struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// Reconciliation statuses owned by the remote server. The client only
// observes them; anything unrecognized is passed through as-is.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusUnknown   = "unknown"
)

// AuthResult is the tool-facing result of an authenticate call.
type AuthResult struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UploadResult is the tool-facing result of an upload_files call.
type UploadResult struct {
	Success     bool   `json:"success"`
	WorkspaceID string `json:"workspace_id"`
	ConfigID    string `json:"config_id"`
	Message     string `json:"message"`
}

// MappingResult is the tool-facing result of a set_field_mapping call.
type MappingResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RunResult is the tool-facing result of a run_reconciliation call. The
// workspace id here may differ from the one returned by upload_files: the
// auto-recon endpoint re-uploads the files and mints its own workspace.
type RunResult struct {
	Success     bool   `json:"success"`
	WorkspaceID string `json:"workspace_id"`
	Message     string `json:"message"`
}

// StatusResult is the tool-facing result of a check_reconciliation_status call.
type StatusResult struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// DownloadResult is the tool-facing result of a download_results call.
// FilePath is absolute; FileSize is the byte count written to disk.
type DownloadResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// ErrorResult is the uniform failure shape relayed across the tool boundary.
type ErrorResult struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Detail  interface{} `json:"detail,omitempty"`
}

// FieldMapping pairs a column from each input file. Exactly one entry per
// mapping document should be flagged as the primary key used for record
// matching; the remote server rejects documents it cannot use.
type FieldMapping struct {
	File1Column  string `json:"file1_column"`
	File2Column  string `json:"file2_column"`
	IsPrimaryKey bool   `json:"is_primary_key"`
}

// MappingDocument is the field-mapping payload posted to the recon API.
type MappingDocument struct {
	Mappings []FieldMapping `json:"mappings"`
}

// PrimaryKeyMapping is the column pair flagged as primary key in a template.
type PrimaryKeyMapping struct {
	File1Column string `json:"file1_column"`
	File2Column string `json:"file2_column"`
}

// WorkbookPreview describes a local spreadsheet: first sheet name, header
// columns and number of data rows under the header.
type WorkbookPreview struct {
	Success  bool     `json:"success"`
	FilePath string   `json:"file_path"`
	Sheet    string   `json:"sheet"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}
