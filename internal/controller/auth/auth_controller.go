package auth

import (
	"errors"
	"net/http"

	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// SignUpStudent godoc
// @Summary Register a new student account
// @Tags Auth
// @Accept json
// @Produce json
// @Param signup_data body dto.SignUpRequest true "Account details"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or username taken"
// @Router /auth/signup/student [post]
func (c *AuthController) SignUpStudent(ctx *gin.Context) {
	c.signUp(ctx, c.authService.RegisterStudent)
}

// SignUpInstructor godoc
// @Summary Register a new instructor account
// @Tags Auth
// @Accept json
// @Produce json
// @Param signup_data body dto.SignUpRequest true "Account details"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or username taken"
// @Router /auth/signup/instructor [post]
func (c *AuthController) SignUpInstructor(ctx *gin.Context) {
	c.signUp(ctx, c.authService.RegisterInstructor)
}

func (c *AuthController) signUp(ctx *gin.Context, register func(dto.SignUpRequest) (*dto.TokenResponse, error)) {
	var req dto.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	token, err := register(req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
			return
		}
		log.Error().Err(err).Msg("SignUp: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to register account"})
		return
	}
	ctx.JSON(http.StatusCreated, token)
}

// Login godoc
// @Summary Exchange credentials for a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param login_data body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	token, err := c.authService.Login(req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid username or password"})
			return
		}
		log.Error().Err(err).Msg("Login: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to log in"})
		return
	}
	ctx.JSON(http.StatusOK, token)
}
