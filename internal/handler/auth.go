package handler

import (
	"net/http"

	"repairtrack/internal/dto"
	"repairtrack/internal/middleware"
	"repairtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Credentials"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me GET /api/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	id := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, dto.UserResponse{ID: id.UserID.String(), Username: id.Username})
}
