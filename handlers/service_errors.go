package handlers

import (
	"net/http"

	"github.com/taskdeck/taskdeck/services"
	"github.com/taskdeck/taskdeck/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. The machine
// readable code travels in the body; the status follows the error category.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	code := services.GetErrorCode(err)
	details := services.GetErrorDetails(err)

	switch {
	case services.IsNotFoundError(err):
		_ = utils.WriteNotFound(w, code, err.Error())

	case services.IsValidationError(err):
		_ = utils.WriteBadRequest(w, code, err.Error(), details)

	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, code, err.Error())

	case services.IsForbiddenError(err):
		_ = utils.WriteForbidden(w, code, err.Error())

	case services.IsConflictError(err):
		_ = utils.WriteConflict(w, code, err.Error(), details)

	case services.IsExternalError(err):
		logger.Error("identity provider error", zap.Error(err))
		_ = utils.WriteError(w, http.StatusBadGateway, code, "identity provider unavailable", nil)

	case services.IsInternalError(err):
		// Internal causes stay in the logs; clients get a generic message.
		logger.Error("internal server error", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		_ = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}
}
