package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/codenexus/errors"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the failure envelope. Data carries partial results when a
// request failed part way, e.g. a broken chain.
type ErrorResponse struct {
	Error *apperrors.AppError `json:"error"`
	Data  any                 `json:"data,omitempty"`
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondWithError derives status and body from an AppError; other errors become 500.
func RespondWithError(c *gin.Context, err error, partial any) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	c.JSON(appErr.HTTPStatus(), ErrorResponse{Error: appErr, Data: partial})
}
