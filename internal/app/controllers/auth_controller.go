package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusmeet/backend/internal/app/models/dto"
	"github.com/campusmeet/backend/internal/app/services"
	"github.com/campusmeet/backend/internal/middleware"
)

// AuthController handles login and signup
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Login handles portal-backed login
// @Summary Log in with portal credentials
// @Description Verifies the credentials against the university portal. Known accounts get a token; unknown accounts get signUpRequired.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Portal credentials"
// @Success 200 {object} dto.LoginResponse "Logged in, or sign up required"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body"),
		))
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Signup handles account registration
// @Summary Sign up with portal credentials
// @Description Verifies the credentials, reads the portal profile and registers a local account under a random anonymous display name.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Portal credentials"
// @Success 201 {object} dto.LoginResponse "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 409 {object} dto.ErrorResponse "Account already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body"),
		))
		return
	}

	resp, err := c.authService.Signup(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}
