package model

// Tool request bodies accepted by the dispatch layer.

type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UploadFilesRequest struct {
	File1Path  string `json:"file1_path" binding:"required"`
	File2Path  string `json:"file2_path" binding:"required"`
	ConfigName string `json:"config_name" binding:"required"`
}

type FieldMappingRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	ConfigID    string `json:"config_id" binding:"required"`
	// UseTemplate defaults to true when omitted.
	UseTemplate   *bool            `json:"use_template"`
	TemplateName  string           `json:"template_name"`
	CustomMapping *MappingDocument `json:"custom_mapping"`
}

type RunReconciliationRequest struct {
	ConfigID  string `json:"config_id" binding:"required"`
	File1Path string `json:"file1_path" binding:"required"`
	File2Path string `json:"file2_path" binding:"required"`
}

type DownloadResultsRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	OutputPath  string `json:"output_path" binding:"required"`
}

type PreviewWorkbookRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}
