package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/service"
)

// ExportHandler serves dataset exports.
type ExportHandler struct {
	export *service.ExportService
}

// NewExportHandler creates a new export handler.
// Parameters:
//   - export: export service instance.
// Returns:
//   - *ExportHandler: initialized handler.
func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Export handles GET /api/v1/export. format selects csv (default) or xlsx;
// archive=true uploads the export to object storage and returns its URL
// instead of streaming the file.
// Parameters:
//   - c: Gin request context.
// Returns: none (streams the file or writes JSON).
func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	if c.Query("archive") == "true" {
		url, err := h.export.Archive(c.Request.Context(), format)
		if err != nil {
			middleware.GetLogger(c).WithError(err).Error("Export archive failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export archive failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
		return
	}

	filename := fmt.Sprintf("tubescope-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	var err error
	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.export.WriteXLSX(c.Request.Context(), c.Writer)
	} else {
		c.Header("Content-Type", "text/csv")
		err = h.export.WriteCSV(c.Request.Context(), c.Writer)
	}
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Export failed")
		// Headers may already be out; nothing more useful to send.
		c.Abort()
	}
}
