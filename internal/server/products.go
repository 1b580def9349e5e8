package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	"github.com/bondexsafety/backoffice/pkg/db/pagination"
)

type listProductsQuery struct {
	CategoryID string `form:"category_id"`
	Status     string `form:"status"`
	Search     string `form:"search"`
	LowStock   bool   `form:"low_stock"`
	SortBy     string `form:"sort_by"`
	OrderBy    string `form:"order_by"`
	pagination.Pagination
}

func (s *Server) listProducts(c *gin.Context, status string) {
	var query listProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if status != "" {
		query.Status = status
	}

	items, pageInfo, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		CategoryID: strings.TrimSpace(query.CategoryID),
		Status:     strings.TrimSpace(query.Status),
		Search:     strings.TrimSpace(query.Search),
		LowStock:   query.LowStock,
		SortBy:     strings.TrimSpace(query.SortBy),
		OrderBy:    strings.TrimSpace(query.OrderBy),
		Page:       query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"products": items, "page_info": pageInfo})
}

// ListProducts is the storefront listing and only shows active products.
func (s *Server) ListProducts(c *gin.Context) {
	s.listProducts(c, "active")
}

func (s *Server) AdminListProducts(c *gin.Context) {
	s.listProducts(c, "")
}

func (s *Server) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	resp, err := s.productSvc.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.productSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.productSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "product deleted", nil)
}

func (s *Server) UploadProductImage(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	file, err := c.FormFile("image")
	if err != nil {
		AbortWithError(c, newValidationError("image", "missing_image", "image file is required"))
		return
	}

	src, err := file.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer src.Close()

	url, err := s.storage.Save(c.Request.Context(), file.Filename, src)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.AttachImage(c.Request.Context(), id, url)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}
