package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

var errBadBody = common.WithMessage(common.ErrorValidation, "Invalid request body")

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, s.log, errBadBody)
		return
	}

	res, err := s.sessions.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, s.log, errBadBody)
		return
	}

	res, err := s.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s *Server) handleLogout(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, s.log, errBadBody)
		return
	}

	if err := s.sessions.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		abortWithError(c, s.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleRefreshTokens(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, s.log, errBadBody)
		return
	}

	pair, err := s.sessions.RefreshAuth(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// handleLogoutAll ends every session of the caller.
func (s *Server) handleLogoutAll(c *gin.Context) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		abortWithStatus(c, http.StatusInternalServerError, msgInternal)
		return
	}

	n, err := s.sessions.LogoutAll(c.Request.Context(), user.ID)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": n})
}
