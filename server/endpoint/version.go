package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/codenexus/version"
)

// Version reports build information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"git_commit": info.GitCommit,
			"build_time": info.BuildTime,
			"go_version": info.GoVersion,
			"is_release": info.IsRelease(),
			"dirty":      info.Dirty,
		})
	}
}
