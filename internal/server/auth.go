package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	identitydomain "github.com/bondexsafety/backoffice/internal/identity/domain"
)

func (s *Server) Login(c *gin.Context) {
	if !s.loginLimiter.Allow("login:"+c.ClientIP(), s.clock.Now()) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	var req identitydomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.identitySvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		s.cfg.AuthCookieName,
		resp.Token,
		int(s.cfg.AuthJWTTTL.Seconds()),
		"/",
		"",
		s.cfg.IsProduction(),
		true,
	)

	respond(c, http.StatusOK, resp)
}

func (s *Server) Me(c *gin.Context) {
	id := actorID(c)
	if id == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	user, err := s.identitySvc.Me(c.Request.Context(), *id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, user)
}

func (s *Server) ChangePassword(c *gin.Context) {
	id := actorID(c)
	if id == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req identitydomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.identitySvc.ChangePassword(c.Request.Context(), *id, req); err != nil {
		AbortWithError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "password updated", nil)
}

func (s *Server) ListUsers(c *gin.Context) {
	var req identitydomain.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.identitySvc.ListUsers(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) CreateUser(c *gin.Context) {
	var req identitydomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	user, err := s.identitySvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, user)
}
