package dashboard

import (
	"time"

	"github.com/gin-gonic/gin"

	"ogc-reserve-cli/logging"
)

// loggingMiddleware routes gin's access log through the shared logger.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		logging.Debug("%s - [%s] \"%s %s %s %d %s\" %s",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.ErrorMessage,
		)
		return ""
	})
}
