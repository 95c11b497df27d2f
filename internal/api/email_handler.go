package api

import (
	"net/http"

	"github.com/parthpandya1729/giarecon/internal/model"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SearchEmails(c *gin.Context) {
	var params model.EmailSearchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.mail.Search(c.Request.Context(), params)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetEmail(c *gin.Context) {
	result, err := h.mail.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) SendEmail(c *gin.Context) {
	var compose model.EmailCompose
	if err := c.ShouldBindJSON(&compose); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.mail.Send(c.Request.Context(), compose)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ReplyEmail(c *gin.Context) {
	var reply model.EmailReply
	if err := c.ShouldBindJSON(&reply); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.mail.Reply(c.Request.Context(), reply)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ForwardEmail(c *gin.Context) {
	var forward model.EmailForward
	if err := c.ShouldBindJSON(&forward); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.mail.Forward(c.Request.Context(), forward)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListEmailFolders(c *gin.Context) {
	result, err := h.mail.Folders(c.Request.Context())
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DownloadAttachment(c *gin.Context) {
	result, err := h.mail.Attachment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
