package middleware

import (
	"net/http"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the request. Hints become
// the message, reportable details are passed through.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := ierr.HTTPStatusFromErr(err)
		if status >= http.StatusInternalServerError {
			log.WithContext(c.Request.Context()).Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"error", err,
			)
		}

		c.JSON(status, ierr.ErrorResponse{
			Success: false,
			Error: ierr.ErrorDetail{
				Code:    ierr.CodeFromErr(err),
				Display: displayMessage(err),
				Details: ierr.ReportableDetails(err),
			},
		})
	}
}

func displayMessage(err error) string {
	if hint := ierr.Hint(err); hint != "" {
		return hint
	}
	return "An unexpected error occurred"
}
