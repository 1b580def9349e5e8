package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	categorydomain "github.com/bondexsafety/backoffice/internal/catalog/category/domain"
	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	identitydomain "github.com/bondexsafety/backoffice/internal/identity/domain"
	"github.com/bondexsafety/backoffice/internal/identity/token"
	orderdomain "github.com/bondexsafety/backoffice/internal/order/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func badRequest(errType, message string) (int, errorPayload) {
	return http.StatusBadRequest, errorPayload{Type: errType, Message: message}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// Business-rule errors carry their own explanatory message.
	var unavailable *orderdomain.ProductUnavailableError
	if errors.As(err, &unavailable) {
		return badRequest("product_unavailable", unavailable.Error())
	}
	var stock *orderdomain.InsufficientStockError
	if errors.As(err, &stock) {
		return badRequest("insufficient_stock", stock.Error())
	}
	var transition *orderdomain.IllegalTransitionError
	if errors.As(err, &transition) {
		return badRequest("illegal_transition", transition.Error())
	}
	var refund *orderdomain.RefundExceedsBalanceError
	if errors.As(err, &refund) {
		return badRequest("refund_exceeds_balance", refund.Error())
	}
	var blocked *categorydomain.DeleteBlockedError
	if errors.As(err, &blocked) {
		return badRequest("category_in_use", blocked.Error())
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, identitydomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}

	case errors.Is(err, identitydomain.ErrAccountLocked):
		return http.StatusForbidden, errorPayload{
			Type:    "account_locked",
			Message: "account temporarily locked, try again later",
		}

	case errors.Is(err, identitydomain.ErrAccountInactive):
		return http.StatusForbidden, errorPayload{
			Type:    "account_inactive",
			Message: "account is not active",
		}

	case errors.Is(err, ErrForbidden), errors.Is(err, identitydomain.ErrNotAdmin):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}

	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests, slow down",
		}

	case errors.Is(err, identitydomain.ErrEmailTaken),
		errors.Is(err, productdomain.ErrNameTaken),
		errors.Is(err, categorydomain.ErrNameTaken):
		return badRequest("conflict", err.Error())

	case errors.Is(err, orderdomain.ErrAlreadyRefunded):
		return badRequest("already_refunded", "order is already fully refunded")

	case errors.Is(err, orderdomain.ErrDeleteNotAllowed):
		return badRequest("delete_not_allowed",
			"only cancelled or stale pending orders can be deleted")

	case isValidationError(err):
		return badRequest("validation_error", err.Error())

	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: err.Error(),
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrInvalidCustomer),
		errors.Is(err, orderdomain.ErrNoItems),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidAddress),
		errors.Is(err, orderdomain.ErrInvalidPaymentMethod),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrInvalidPaymentStatus),
		errors.Is(err, orderdomain.ErrInvalidRefundAmount),
		errors.Is(err, orderdomain.ErrMissingRefundReason),
		errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidSalePrice),
		errors.Is(err, productdomain.ErrInvalidStock),
		errors.Is(err, productdomain.ErrInvalidStatus),
		errors.Is(err, categorydomain.ErrInvalidID),
		errors.Is(err, categorydomain.ErrInvalidName),
		errors.Is(err, categorydomain.ErrInvalidType),
		errors.Is(err, categorydomain.ErrInvalidStatus),
		errors.Is(err, categorydomain.ErrNestedParent):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrProductNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrCategoryNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, categorydomain.ErrParentNotFound),
		errors.Is(err, identitydomain.ErrUserNotFound):
		return true
	}
	return false
}
