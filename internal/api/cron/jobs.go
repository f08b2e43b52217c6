package cron

import (
	"context"
	"net/http"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/api/dto"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// JobRunner runs a registered job once, refusing when it is already running
type JobRunner interface {
	TryRun(ctx context.Context, name string) (any, error)
}

// JobHandler triggers the scheduled procedures on demand
type JobHandler struct {
	runner JobRunner
	logger *logger.Logger
}

func NewJobHandler(runner JobRunner, logger *logger.Logger) *JobHandler {
	return &JobHandler{
		runner: runner,
		logger: logger,
	}
}

// RunBilling runs one billing batch
func (h *JobHandler) RunBilling(c *gin.Context) {
	h.run(c, scheduler.JobBilling)
}

// RunInvoiceGeneration runs one invoice generation batch
func (h *JobHandler) RunInvoiceGeneration(c *gin.Context) {
	h.run(c, scheduler.JobInvoiceGeneration)
}

func (h *JobHandler) run(c *gin.Context, job string) {
	h.logger.Infow("manual job run requested",
		"job", job,
		"time", time.Now().UTC().Format(time.RFC3339),
	)

	resp := &dto.JobRunResponse{
		Job:     job,
		Started: time.Now().UTC(),
	}
	result, err := h.runner.TryRun(c.Request.Context(), job)
	resp.Finished = time.Now().UTC()

	if err != nil && (ierr.IsInvalidOperation(err) || ierr.IsNotFound(err)) {
		c.Error(err)
		return
	}

	resp.Result = result
	resp.Success = err == nil
	if err != nil {
		// a batch that ran but partly failed still reports what it did
		resp.Error = err.Error()
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
