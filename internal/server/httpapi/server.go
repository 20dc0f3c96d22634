// Package httpapi exposes the session and user-management use cases over
// HTTP/JSON with gin, guarded by the bearer-token and role gates.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// SessionUsecase is the session lifecycle consumed by the auth routes.
type SessionUsecase interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) (int64, error)
	RefreshAuth(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// UserUsecase is the identity management consumed by the user routes.
type UserUsecase interface {
	CreateUser(ctx context.Context, name, email, password string, role models.Role) (*models.PublicUser, error)
	ListUsers(ctx context.Context, page, limit int) (*services.Page, error)
	GetUser(ctx context.Context, id string) (*models.PublicUser, error)
	UpdateUser(ctx context.Context, id string, name, email, password *string) (*models.PublicUser, error)
	DeleteUser(ctx context.Context, id string) error
}

// Authenticator resolves an access token to its owner.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Server holds the gin engine and its collaborators.
type Server struct {
	router   *gin.Engine
	sessions SessionUsecase
	users    UserUsecase
	gate     Authenticator
	log      logging.Logger
}

func NewServer(sessions SessionUsecase, users UserUsecase, gate Authenticator, log logging.Logger) *Server {
	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log))

	s := &Server{
		router:   router,
		sessions: sessions,
		users:    users,
		gate:     gate,
		log:      log,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", s.handleRegister)
		authRoutes.POST("/login", s.handleLogin)
		authRoutes.POST("/logout", s.handleLogout)
		authRoutes.POST("/refresh-tokens", s.handleRefreshTokens)
		authRoutes.POST("/logout-all", Authenticate(s.gate, s.log), s.handleLogoutAll)
	}

	userRoutes := v1.Group("/users")
	userRoutes.Use(Authenticate(s.gate, s.log))
	{
		userRoutes.GET("/me", s.handleMe)
		userRoutes.GET("/:id", s.handleGetUser)

		admin := userRoutes.Group("")
		admin.Use(RequireRole(models.RoleAdmin))
		admin.POST("", s.handleCreateUser)
		admin.GET("", s.handleListUsers)
		admin.PATCH("/:id", s.handleUpdateUser)
		admin.DELETE("/:id", s.handleDeleteUser)
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
