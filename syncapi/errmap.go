package syncapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/lottery_backend/config"
	"github.com/mmdatafocus/lottery_backend/models"
	"github.com/mmdatafocus/lottery_backend/utils"
)

// StatusForKind maps the domain error kind to an HTTP status. Precondition
// failures are 400s with a distinct code so devices can tell "does not
// exist" from "exists but unusable".
func StatusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindValidation, models.ErrorKindFailedPrecondition:
		return http.StatusBadRequest
	case models.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case models.ErrorKindNotFound:
		return http.StatusNotFound
	case models.ErrorKindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBodyFor flattens a SyncError into the wire shape. Precondition
// errors surface as FAILED_PRECONDITION with the taxonomy code demoted to
// the reason field.
func ErrorBodyFor(se *models.SyncError) ErrorBody {
	body := ErrorBody{
		Code:    se.Code,
		Message: se.Message,
		Details: se.Meta,
	}
	if se.Kind == models.ErrorKindFailedPrecondition {
		body.Code = "FAILED_PRECONDITION"
		body.Reason = se.Code
	}
	return body
}

func respondError(c *gin.Context, err error) {
	if se := models.AsSyncError(err); se != nil {
		c.JSON(StatusForKind(se.Kind), ErrorEnvelope{Success: false, Error: ErrorBodyFor(se)})
		return
	}
	// Infrastructure failures never leak their text to the device.
	logger := config.GetLogger()
	config.LogError(logger, "syncapi", "respondError", c.FullPath(), nil, err)
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Success: false,
		Error:   ErrorBody{Code: "INTERNAL", Message: "internal server error"},
	})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessEnvelope{Success: true, Data: data})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Success: false,
		Error:   ErrorBody{Code: models.CodeValidationFailed, Message: message},
	})
}

// respondBindError reports a request binding failure, with per-field tags
// when the failure came from struct validation.
func respondBindError(c *gin.Context, message string, err error) {
	body := ErrorBody{Code: models.CodeValidationFailed, Message: message}
	if fields := utils.ProcessValidationErrors(err); len(fields) > 0 {
		body.Details = map[string]interface{}{"fields": fields}
	}
	c.JSON(http.StatusBadRequest, ErrorEnvelope{Success: false, Error: body})
}
