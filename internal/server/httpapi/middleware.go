package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgNotLoggedIn  = "You are not logged in"
	msgInvalidToken = "Invalid or expired token"
	msgUserGone     = "The user belonging to this token no longer exists"
	msgNoPermission = "You do not have permission to access this resource"
	userContextKey  = "user"
	requestIDHeader = "X-Request-ID"
)

// Authenticate is the auth gate: it requires an "Authorization: Bearer"
// access token, loads its owner and attaches it to the request context.
func Authenticate(gate Authenticator, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithStatus(c, http.StatusUnauthorized, msgNotLoggedIn)
			return
		}

		user, err := gate.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrorUnauthorized):
			abortWithStatus(c, http.StatusUnauthorized, msgInvalidToken)
			return
		case errors.Is(err, common.ErrorNotFound):
			abortWithStatus(c, http.StatusNotFound, msgUserGone)
			return
		default:
			abortWithError(c, log, err)
			return
		}

		c.Set(userContextKey, user)
		c.Request = c.Request.WithContext(auth.ContextWithUser(c.Request.Context(), user))
		c.Next()
	}
}

// RequireRole is the role gate. It must run after Authenticate.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.UserFromContext(c.Request.Context())
		if !ok {
			abortWithStatus(c, http.StatusInternalServerError, msgInternal)
			return
		}
		if err := auth.Authorize(user, required); err != nil {
			abortWithStatus(c, http.StatusForbidden, msgNoPermission)
			return
		}
		c.Next()
	}
}

// Recovery turns a handler panic into a logged 500.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered",
					"method", c.Request.Method, "path", c.Request.URL.Path, "panic", r)
				abortWithStatus(c, http.StatusInternalServerError, msgInternal)
			}
		}()
		c.Next()
	}
}

// RequestLogger logs one line per request. A request without an
// X-Request-ID gets a fresh one, echoed back in the response.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", requestID,
		)
	}
}
