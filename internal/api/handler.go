package api

import (
	"net/http"

	"github.com/parthpandya1729/giarecon/internal/config"
	"github.com/parthpandya1729/giarecon/internal/excel"
	"github.com/parthpandya1729/giarecon/internal/logger"
	"github.com/parthpandya1729/giarecon/internal/mailbridge"
	"github.com/parthpandya1729/giarecon/internal/mapping"
	"github.com/parthpandya1729/giarecon/internal/model"
	"github.com/parthpandya1729/giarecon/internal/recon"
	"github.com/parthpandya1729/giarecon/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler exposes each client operation as a callable tool. Tool-level
// failures are relayed as a 200 with the uniform {success:false} shape so the
// calling agent always receives a structured result; only malformed request
// bodies get a 4xx.
type Handler struct {
	recon *recon.Client
	mail  *mailbridge.Client
	cfg   *config.Config
	log   zerolog.Logger
}

func NewHandler(reconClient *recon.Client, mailClient *mailbridge.Client, cfg *config.Config) *Handler {
	return &Handler{
		recon: reconClient,
		mail:  mailClient,
		cfg:   cfg,
		log:   logger.Get(),
	}
}

// Authenticate obtains a bearer token. Empty credentials fall back to the
// configured defaults so agents can rely on deployment-level credentials.
func (h *Handler) Authenticate(c *gin.Context) {
	var req model.AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Username == "" {
		req.Username = h.cfg.ReconAPI.Username
	}
	if req.Password == "" {
		req.Password = h.cfg.ReconAPI.Password
	}
	if req.Username == "" || req.Password == "" {
		h.toolError(c, errors.Precondition("username and password are required"))
		return
	}

	result, err := h.recon.Session().Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UploadFiles(c *gin.Context) {
	var req model.UploadFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.recon.UploadFiles(c.Request.Context(), req.File1Path, req.File2Path, req.ConfigName)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetFieldMapping configures column mappings for a workspace. By default the
// named built-in template is used; callers may supply a custom document
// instead by setting use_template to false.
func (h *Handler) SetFieldMapping(c *gin.Context) {
	var req model.FieldMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	useTemplate := req.UseTemplate == nil || *req.UseTemplate

	var doc model.MappingDocument
	if useTemplate {
		name := req.TemplateName
		if name == "" {
			name = "samsung"
		}
		template, err := mapping.Template(name)
		if err != nil {
			h.toolError(c, err)
			return
		}
		doc = template
	} else {
		if req.CustomMapping == nil {
			h.toolError(c, errors.PreconditionWrap(errors.ErrMissingMapping, errors.ErrMissingMapping.Error()))
			return
		}
		doc = *req.CustomMapping
	}

	result, err := h.recon.SetFieldMapping(c.Request.Context(), req.WorkspaceID, req.ConfigID, doc)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RunReconciliation(c *gin.Context) {
	var req model.RunReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.recon.RunReconciliation(c.Request.Context(), req.ConfigID, req.File1Path, req.File2Path)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CheckStatus(c *gin.Context) {
	workspaceID := c.Param("workspace_id")

	result, err := h.recon.CheckStatus(c.Request.Context(), workspaceID)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DownloadResults(c *gin.Context) {
	var req model.DownloadResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.recon.DownloadResults(c.Request.Context(), req.WorkspaceID, req.OutputPath)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetMappingTemplate(c *gin.Context) {
	name := c.Param("name")

	template, err := mapping.Template(name)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"template": name,
		"mappings": template.Mappings,
	})
}

func (h *Handler) GetPrimaryKeyMapping(c *gin.Context) {
	name := c.Param("name")

	pk, found, err := mapping.PrimaryKey(name)
	if err != nil {
		h.toolError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"success": true, "template": name})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"template":     name,
		"file1_column": pk.File1Column,
		"file2_column": pk.File2Column,
	})
}

func (h *Handler) PreviewWorkbook(c *gin.Context) {
	var req model.PreviewWorkbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := excel.Preview(req.FilePath)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	validation := h.cfg.Validate()
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      h.cfg.App.Name,
		"version":      h.cfg.App.Version,
		"config_valid": validation.Valid,
	})
}

// toolError converts any operation failure into the uniform result shape.
func (h *Handler) toolError(c *gin.Context, err error) {
	if e, ok := errors.As(err); ok {
		h.log.Error().Str("kind", string(e.Kind)).Err(err).Msg("Tool call failed")
		c.JSON(http.StatusOK, model.ErrorResult{Error: e.Error(), Detail: e.Detail})
		return
	}
	h.log.Error().Err(err).Msg("Tool call failed")
	c.JSON(http.StatusOK, model.ErrorResult{Error: err.Error()})
}
