package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/models"
	"github.com/use-agent/bookmarksort/storage"
)

// Upload returns a handler for POST /api/v1/upload.
//
// Expects a multipart form with the bookmark export in field "file" and
// answers with the opaque handle to pass to /parse.
func Upload(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			abortInvalid(c, "no file detected")
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(c, models.NewServiceError(models.ErrCodeUpload, "could not read upload", err))
			return
		}
		defer f.Close()

		handle, err := store.Save(f, fh.Filename)
		if err != nil {
			slog.Warn("upload failed", "filename", fh.Filename, "error", err)
			respondError(c, err)
			return
		}

		slog.Info("bookmark file uploaded", "filename", fh.Filename, "handle", handle, "bytes", fh.Size)
		c.JSON(http.StatusOK, models.UploadResponse{
			Message:  "uploaded",
			Filename: handle,
		})
	}
}
