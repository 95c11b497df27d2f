package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// Tool surface: one route per callable tool
	tools := router.Group("/api/v1/tools")
	{
		// Reconciliation workflow
		tools.POST("/authenticate", handler.Authenticate)
		tools.POST("/upload-files", handler.UploadFiles)
		tools.POST("/field-mapping", handler.SetFieldMapping)
		tools.POST("/run-reconciliation", handler.RunReconciliation)
		tools.GET("/reconciliation-status/:workspace_id", handler.CheckStatus)
		tools.POST("/download-results", handler.DownloadResults)

		// Mapping templates and workbook inspection
		tools.GET("/mapping-templates/:name", handler.GetMappingTemplate)
		tools.GET("/mapping-templates/:name/primary-key", handler.GetPrimaryKeyMapping)
		tools.POST("/preview-workbook", handler.PreviewWorkbook)

		// Email operations (proxied to the email bridge)
		tools.POST("/search-emails", handler.SearchEmails)
		tools.GET("/emails/:id", handler.GetEmail)
		tools.POST("/send-email", handler.SendEmail)
		tools.POST("/reply-email", handler.ReplyEmail)
		tools.POST("/forward-email", handler.ForwardEmail)
		tools.GET("/email-folders", handler.ListEmailFolders)
		tools.GET("/attachments/:id", handler.DownloadAttachment)
	}
}
