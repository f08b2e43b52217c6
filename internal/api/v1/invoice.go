package v1

import (
	"net/http"

	"github.com/NinnOgTonic/antaeus/internal/api/dto"
	"github.com/NinnOgTonic/antaeus/internal/domain/invoice"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/service"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		log:     log,
	}
}

// ListInvoices returns invoices ordered by id, optionally filtered by status
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var req dto.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Normalize(); err != nil {
		c.Error(err)
		return
	}
	if req.Status != "" {
		if err := req.Status.Validate(); err != nil {
			c.Error(err)
			return
		}
	}

	var (
		invoices []*invoice.Invoice
		err      error
	)
	if req.Status == types.InvoiceStatusPending {
		invoices, err = h.service.ListPendingInvoices(c.Request.Context(), 0)
	} else {
		invoices, err = h.service.ListInvoices(c.Request.Context())
	}
	if err != nil {
		c.Error(err)
		return
	}

	if req.Status != "" {
		invoices = lo.Filter(invoices, func(inv *invoice.Invoice, _ int) bool {
			return inv.Status == req.Status
		})
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})
	c.JSON(http.StatusOK, types.Paginate(items, req.PageParams))
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.service.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewInvoiceResponse(inv))
}
