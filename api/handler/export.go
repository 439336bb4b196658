package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/bookmarks"
	"github.com/use-agent/bookmarksort/models"
)

// Export returns a handler for POST /api/v1/export.
//
// The classified batch is grouped by category and sent back as a file
// download: a Netscape bookmark file by default, or Markdown.
func Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalid(c, err.Error())
			return
		}
		req.Defaults()

		var (
			buf         bytes.Buffer
			err         error
			filename    string
			contentType string
		)
		switch req.Format {
		case "markdown":
			err = bookmarks.WriteMarkdown(&buf, req.Bookmarks, req.Title)
			filename, contentType = "exported_bookmarks.md", "text/markdown; charset=utf-8"
		default:
			err = bookmarks.WriteHTML(&buf, req.Bookmarks, req.Title)
			filename, contentType = "exported_bookmarks.html", "text/html; charset=utf-8"
		}
		if err != nil {
			respondError(c, models.NewServiceError(models.ErrCodeExport, "export failed", err))
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}
