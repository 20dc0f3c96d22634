package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

type createUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type listUsersQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func (s *Server) handleMe(c *gin.Context) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		abortWithStatus(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	req := createUserRequest{Role: models.RoleUser}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, s.log, errBadBody)
		return
	}

	user, err := s.users.CreateUser(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleListUsers(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, s.log, common.WithMessage(common.ErrorValidation, "page and limit must be positive integers"))
		return
	}

	page, err := s.users.ListUsers(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, s.log, errBadBody)
		return
	}

	user, err := s.users.UpdateUser(c.Request.Context(), c.Param("id"), req.Name, req.Email, req.Password)
	if err != nil {
		abortWithError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	if err := s.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, s.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
