package delivery

import (
	"net/http"

	"projexa/internal/domain"
	"projexa/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.AuthUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc domain.AuthUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.useCase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Registration failed", err))
		return
	}
	SuccessResponse(c, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Login failed", err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Login successful", sess)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.useCase.Logout(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Logout failed")
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.useCase.Me(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), errorMessage("Not signed in", err))
		return
	}
	SuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}
