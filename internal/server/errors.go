package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	billingdomain "github.com/railzwaylabs/aligntrack/internal/billing/domain"
	casedomain "github.com/railzwaylabs/aligntrack/internal/casework/domain"
	catalogdomain "github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	notificationdomain "github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"github.com/railzwaylabs/aligntrack/pkg/validation"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	errInvalidBody  = errors.New("invalid_request")
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error errorBody `json:"error"`
}

func invalidRequestError() error {
	return errInvalidBody
}

func newValidationError(field, reason string) error {
	return validation.New(field, reason)
}

// AbortWithError maps domain errors to a status and a stable error code.
// Unknown errors are logged and answered with a generic 500.
func AbortWithError(c *gin.Context, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		if logger, ok := c.Get(contextLoggerKey); ok {
			logger.(*zap.Logger).Error("request failed", zap.Error(err))
		}
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

func classify(err error) (int, errorBody) {
	if verr, ok := validation.As(err); ok {
		return http.StatusBadRequest, errorBody{
			Code:    "validation_error",
			Message: verr.Error(),
			Field:   verr.Field,
		}
	}

	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, coded(err, "invalid request body")
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, notificationdomain.ErrUnauthenticated):
		return http.StatusUnauthorized, coded(ErrUnauthorized, "authentication required")
	case errors.Is(err, ErrForbidden),
		errors.Is(err, casedomain.ErrForbidden),
		errors.Is(err, allocationdomain.ErrForbidden),
		errors.Is(err, billingdomain.ErrForbidden):
		return http.StatusForbidden, coded(ErrForbidden, "not allowed")
	case errors.Is(err, casedomain.ErrInvalidID),
		errors.Is(err, casedomain.ErrInvalidStatus),
		errors.Is(err, allocationdomain.ErrInvalidID),
		errors.Is(err, allocationdomain.ErrInvalidPaymentType),
		errors.Is(err, billingdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidServiceType),
		errors.Is(err, notificationdomain.ErrInvalidID):
		return http.StatusBadRequest, coded(err, "invalid request")
	case errors.Is(err, casedomain.ErrNotFound),
		errors.Is(err, allocationdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound):
		return http.StatusNotFound, coded(err, "not found")
	case errors.Is(err, casedomain.ErrStaleState):
		return http.StatusConflict, errorBody{Code: "stale_state", Message: "case changed concurrently, reload and retry"}
	case errors.Is(err, casedomain.ErrRefinementConflict):
		return http.StatusConflict, errorBody{Code: "refinement_conflict", Message: "refinement created concurrently, retry"}
	case errors.Is(err, casedomain.ErrInvalidStateTransition):
		return http.StatusConflict, coded(casedomain.ErrInvalidStateTransition, "operation not allowed in the current status")
	case errors.Is(err, casedomain.ErrHasAllocations),
		errors.Is(err, casedomain.ErrHasRefinements),
		errors.Is(err, allocationdomain.ErrDuplicateRequest):
		return http.StatusConflict, coded(err, "conflict")
	default:
		return http.StatusInternalServerError, errorBody{Code: "internal_error", Message: "internal server error"}
	}
}

func coded(err error, message string) errorBody {
	return errorBody{Code: err.Error(), Message: message}
}
