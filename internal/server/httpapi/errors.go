package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const msgInternal = "Internal Server Error"

// statusFor maps a service error onto a status and caller-safe text.
func statusFor(err error) (int, string) {
	var me *common.MessageError
	msg := ""
	if errors.As(err, &me) {
		msg = me.Message
	}
	orDefault := func(def string) string {
		if msg == "" {
			return def
		}
		return msg
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, orDefault("Invalid request")
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, orDefault("The data you entered already exists.")
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, orDefault("Unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, orDefault("Forbidden")
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, orDefault("Not found")
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// abortWithError writes the error body and stops the chain. Server faults
// are logged here and nowhere else.
func abortWithError(c *gin.Context, log logging.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	abortWithStatus(c, status, msg)
}

func abortWithStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: status, Message: msg})
}
