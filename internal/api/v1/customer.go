package v1

import (
	"net/http"

	"github.com/NinnOgTonic/antaeus/internal/api/dto"
	"github.com/NinnOgTonic/antaeus/internal/domain/customer"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/service"
	"github.com/NinnOgTonic/antaeus/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

func NewCustomerHandler(service service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var page types.PageParams
	if err := c.ShouldBindQuery(&page); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if err := page.Normalize(); err != nil {
		c.Error(err)
		return
	}

	customers, err := h.service.ListCustomers(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	items := lo.Map(customers, func(cust *customer.Customer, _ int) *dto.CustomerResponse {
		return dto.NewCustomerResponse(cust)
	})
	c.JSON(http.StatusOK, types.Paginate(items, page))
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	cust, err := h.service.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCustomerResponse(cust))
}
