package handler

import (
	"net/http"

	"clinic-booking-be/internal/apperror"
	"clinic-booking-be/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the failure payload of every endpoint. Code lets the client
// tell "slot taken" from "already cancelled" when both are 409.
type ErrorBody struct {
	Detail string        `json:"detail"`
	Code   apperror.Kind `json:"code"`
}

// WriteError maps err onto its HTTP status. Unclassified errors are logged
// and reported as a generic 500.
func WriteError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	if kind == apperror.KindInternal {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, ErrorBody{
		Detail: apperror.Message(err),
		Code:   kind,
	})
}

// bindError reports a malformed or invalid request body.
func bindError(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorBody{
		Detail: detail,
		Code:   apperror.KindValidation,
	})
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
