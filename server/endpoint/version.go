package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voicescreen/version"
)

var startTime = time.Now()

// Version reports build information and uptime.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"version":    v.Version,
			"git_commit": v.GitCommit,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"is_release": v.IsRelease(),
			"is_dirty":   v.Dirty,
			"uptime":     time.Since(startTime).Round(time.Second).String(),
		})
	}
}
