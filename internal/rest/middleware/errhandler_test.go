package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware, ErrorHandler(logger.NewNopLogger()))
	r.GET("/fail", func(c *gin.Context) {
		c.Error(fail)
	})
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func serve(r *gin.Engine, path string) (*httptest.ResponseRecorder, ierr.ErrorResponse) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp ierr.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "not found",
			err:    ierr.NewError("invoice not found").WithHint("Invoice was not found").Mark(ierr.ErrNotFound),
			status: http.StatusNotFound,
			code:   ierr.ErrCodeNotFound,
		},
		{
			name:   "validation",
			err:    ierr.NewError("bad limit").WithHint("Invalid query parameters").Mark(ierr.ErrValidation),
			status: http.StatusBadRequest,
			code:   ierr.ErrCodeValidation,
		},
		{
			name:   "invalid operation",
			err:    ierr.NewError("job already running").WithHint("Job is already running").Mark(ierr.ErrInvalidOperation),
			status: http.StatusConflict,
			code:   ierr.ErrCodeInvalidOperation,
		},
		{
			name:   "unmarked",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := serve(newTestEngine(tt.err), "/fail")
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error.Display)
			if tt.code != "" {
				assert.Equal(t, tt.code, resp.Error.Code)
			}
		})
	}
}

func TestErrorHandlerHintAndDetails(t *testing.T) {
	err := ierr.NewError("invalid currency").
		WithHint("Currency is not supported").
		WithReportableDetails(map[string]any{"currency": "JPY"}).
		Mark(ierr.ErrValidation)

	rec, resp := serve(newTestEngine(err), "/fail")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Currency is not supported", resp.Error.Display)
	assert.Equal(t, "JPY", resp.Error.Details["currency"])
}

func TestErrorHandlerPassesSuccess(t *testing.T) {
	rec, _ := serve(newTestEngine(nil), "/ok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(types.HeaderRequestID))
}
