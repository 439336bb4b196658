package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/bookmarks"
	"github.com/use-agent/bookmarksort/cache"
	"github.com/use-agent/bookmarksort/models"
	"github.com/use-agent/bookmarksort/storage"
)

// Parse returns a handler for POST /api/v1/parse.
//
// Results are cached per handle; uploads never change once stored.
func Parse(store *storage.Store, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalid(c, err.Error())
			return
		}

		if cc != nil {
			if cached, hit := cc.Get(req.Filename); hit {
				c.JSON(http.StatusOK, models.ParseResponse{Bookmarks: cached, CacheStatus: "hit"})
				return
			}
		}

		raw, err := store.Read(req.Filename)
		if err != nil {
			respondError(c, err)
			return
		}

		parsed, err := bookmarks.ParseBytes(raw)
		if err != nil {
			respondError(c, models.NewServiceError(models.ErrCodeParse, "could not parse bookmark file", err))
			return
		}
		slog.Info("bookmark file parsed", "handle", req.Filename, "bookmarks", len(parsed))

		resp := models.ParseResponse{Bookmarks: parsed}
		if cc != nil {
			cc.Set(req.Filename, parsed)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}
