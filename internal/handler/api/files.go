package api

import (
	"net/http"
	"strings"

	"bot-for-order/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// FileOpener resolves a presigned object key to a local file.
type FileOpener interface {
	Open(key, token string) (string, error)
}

type FileHandler struct {
	files FileOpener
}

func NewFileHandler(files FileOpener) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Download token required"}})
		return
	}

	path, err := h.files.Open(key, token)
	if err != nil {
		httperr.AbortWithAppError(c, err)
		return
	}
	c.File(path)
}
