package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) OrderReceipt(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	order, err := s.orderSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.receipts.OrderReceipt(c.Request.Context(), order)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+order.OrderNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
