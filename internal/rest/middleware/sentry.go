package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/config"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware puts a sentry hub on each request and captures panics
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryErrorReporter sends errors that end a request with a 5xx to the
// request's hub, tagged with the request id and route. Without a hub it does
// nothing.
func SentryErrorReporter(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}

	err := c.Errors.Last().Err
	status := ierr.HTTPStatusFromErr(err)
	if status < http.StatusInternalServerError {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", types.GetRequestID(c.Request.Context()))
		scope.SetTag("route", c.FullPath())
		scope.SetTag("status", strconv.Itoa(status))
		hub.CaptureException(err)
	})
}
