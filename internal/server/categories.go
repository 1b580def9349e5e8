package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	categorydomain "github.com/bondexsafety/backoffice/internal/catalog/category/domain"
)

type listCategoriesQuery struct {
	Type     string `form:"type"`
	ParentID string `form:"parent_id"`
	Status   string `form:"status"`
	RootOnly bool   `form:"root_only"`
}

func (s *Server) listCategories(c *gin.Context, status string) {
	var query listCategoriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if status != "" {
		query.Status = status
	}

	items, err := s.categorySvc.List(c.Request.Context(), categorydomain.ListRequest{
		Type:     strings.TrimSpace(query.Type),
		ParentID: strings.TrimSpace(query.ParentID),
		Status:   strings.TrimSpace(query.Status),
		RootOnly: query.RootOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"categories": items})
}

// ListCategories is the storefront listing and only shows active
// categories.
func (s *Server) ListCategories(c *gin.Context) {
	s.listCategories(c, "active")
}

func (s *Server) AdminListCategories(c *gin.Context) {
	s.listCategories(c, "")
}

func (s *Server) GetCategory(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.categorySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req categorydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.categorySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) UpdateCategory(c *gin.Context) {
	var req categorydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.categorySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) DeleteCategory(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.categorySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "category deleted", nil)
}
