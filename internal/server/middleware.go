package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identitydomain "github.com/bondexsafety/backoffice/internal/identity/domain"
)

const contextUserIDKey = "user_id"

// publicOrderRate allows a short burst of order submissions per client
// and then refills one token every two seconds.
const (
	publicOrderRate  = 0.5
	publicOrderBurst = 5
)

func (s *Server) bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if cookie, err := c.Cookie(s.cfg.AuthCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// AdminRequired authenticates the request from the Authorization header
// or the admin cookie and requires an active admin account.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := s.bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, _, err := s.tokens.Verify(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.identityRepo.Find(c.Request.Context(), s.db, userID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if user.Role != identitydomain.RoleAdmin || user.Status != identitydomain.StatusActive {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(contextUserIDKey, user.ID)
		c.Next()
	}
}

// actorID returns the authenticated admin's id, nil on public routes.
func actorID(c *gin.Context) *int64 {
	v, ok := c.Get(contextUserIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(int64)
	if !ok {
		return nil
	}
	return &id
}

// OrderRateLimit throttles guest order creation per client IP via the
// redis token bucket. It is a pass-through when redis is not configured.
func (s *Server) OrderRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.orderLimiter == nil {
			c.Next()
			return
		}

		key := "ratelimit:orders:" + c.ClientIP()
		res, err := s.orderLimiter.Allow(c.Request.Context(), key, publicOrderRate, publicOrderBurst)
		if err != nil {
			// Redis being down must not take order intake with it.
			s.log.Warn("order rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
