package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/bondexsafety/backoffice/internal/order/domain"
	"github.com/bondexsafety/backoffice/pkg/db/pagination"
)

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, http.StatusCreated, "order placed", resp)
}

// LookupOrder is the guest tracking endpoint. The customer email must
// match the order to prevent order-number guessing.
func (s *Server) LookupOrder(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		AbortWithError(c, newValidationError("email", "missing_email", "email query parameter is required"))
		return
	}

	resp, err := s.orderSvc.GetByNumber(c.Request.Context(), number, email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

type listOrdersQuery struct {
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	Search        string `form:"search"`
	From          string `form:"from"`
	To            string `form:"to"`
	pagination.Pagination
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDateEnd parses the upper bound of a date range. The named day is
// included: the bound becomes the start of the following day, paired
// with the repository's created_at < bound comparison.
func parseDateEnd(value string) (*time.Time, error) {
	t, err := parseDate(value)
	if err != nil || t == nil {
		return t, err
	}
	end := t.AddDate(0, 0, 1)
	return &end, nil
}

func (s *Server) ListOrders(c *gin.Context) {
	var query listOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseDate(query.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_date", "from must be YYYY-MM-DD"))
		return
	}
	to, err := parseDateEnd(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_date", "to must be YYYY-MM-DD"))
		return
	}

	items, pageInfo, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		Status:        strings.TrimSpace(query.Status),
		PaymentStatus: strings.TrimSpace(query.PaymentStatus),
		Search:        strings.TrimSpace(query.Search),
		From:          from,
		To:            to,
		Page:          query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"orders": items, "page_info": pageInfo})
}

func (s *Server) GetOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req orderdomain.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.ActorID = actorID(c)

	resp, err := s.orderSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) UpdateOrderTracking(c *gin.Context) {
	var req orderdomain.TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.ActorID = actorID(c)

	resp, err := s.orderSvc.UpdateTracking(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) UpdateOrderPayment(c *gin.Context) {
	var req orderdomain.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.ActorID = actorID(c)

	resp, err := s.orderSvc.UpdatePayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) RefundOrder(c *gin.Context) {
	var req orderdomain.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))
	req.ActorID = actorID(c)

	resp, err := s.orderSvc.Refund(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "refund processed", resp)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.orderSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "order deleted", nil)
}
