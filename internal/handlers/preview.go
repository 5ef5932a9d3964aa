package handlers

import (
	"net/http"

	"github.com/go-authgate/pairgate/internal/preview"

	"github.com/gin-gonic/gin"
)

type PreviewHandler struct {
	compiler *preview.Compiler
	maxBody  int64
}

// NewPreviewHandler creates the handler. Request bodies larger than
// maxSourceBytes plus JSON overhead are refused before decoding.
func NewPreviewHandler(compiler *preview.Compiler, maxSourceBytes int) *PreviewHandler {
	return &PreviewHandler{compiler: compiler, maxBody: int64(maxSourceBytes)*2 + 64*1024}
}

// Compile handles POST /preview/compile
func (h *PreviewHandler) Compile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	var req preview.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}

	res, err := h.compiler.Compile(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"js":       res.JS,
		"css":      res.CSS,
		"warnings": warnings,
	})
}
