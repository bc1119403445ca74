package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openhelpdesk/helpdesk/internal/application/user/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/common"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

type AuthHandler struct {
	loginUseCase        loginUseCase
	logoutUseCase       logoutUseCase
	accountUseCase      accountUseCase
	settingsUseCase     settingsUseCase
	requestResetUseCase requestPasswordResetUseCase
	confirmResetUseCase confirmPasswordResetUseCase
	authConfig          config.AuthConfig
	logger              logger.Interface
}

func NewAuthHandler(
	loginUC loginUseCase,
	logoutUC logoutUseCase,
	accountUC accountUseCase,
	settingsUC settingsUseCase,
	requestResetUC requestPasswordResetUseCase,
	confirmResetUC confirmPasswordResetUseCase,
	authConfig config.AuthConfig,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:        loginUC,
		logoutUseCase:       logoutUC,
		accountUseCase:      accountUC,
		settingsUseCase:     settingsUC,
		requestResetUseCase: requestResetUC,
		confirmResetUseCase: confirmResetUC,
		authConfig:          authConfig,
		logger:              logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Remember bool   `json:"remember_me" form:"remember_me"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

func (r *RegisterRequest) toCommand() usecases.CreateAccountCommand {
	return usecases.CreateAccountCommand{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type PasswordResetRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token" form:"token" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login handles POST /login
// @Summary Log in
// @Description Accepts a username or an email address. remember_me keeps
// @Description the user logged in across browser restarts.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Failure 429 {object} utils.APIResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), usecases.LoginCommand{
		Identifier:     req.Username,
		Password:       req.Password,
		Remember:       req.Remember,
		UserAgent:      c.GetHeader("User-Agent"),
		RememberCookie: utils.GetCookie(c, h.authConfig.Remember.CookieName),
	})
	if err != nil {
		h.logger.Warnw("login failed", "identifier", req.Username, "ip", c.ClientIP())
		utils.ErrorResponseWithError(c, err)
		return
	}

	maxAge := int(time.Until(result.SessionExpiresAt).Seconds())
	utils.SetSessionCookie(c, h.authConfig.Cookie, result.SessionToken, maxAge)
	utils.SetCSRFCookie(c, h.authConfig.Cookie, maxAge)
	if result.RememberCookie != "" {
		utils.SetRememberCookie(c, h.authConfig.Cookie, h.authConfig.Remember.CookieName,
			result.RememberCookie, h.authConfig.Remember.ExpDays*24*60*60)
	} else if result.ClearRememberCookie {
		utils.ClearRememberCookie(c, h.authConfig.Cookie, h.authConfig.Remember.CookieName)
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", gin.H{"user": result.User})
}

// Logout handles POST /logout. The remember-me token is revoked even when
// the session has already expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := common.CurrentUserID(c)
	rememberCookie := utils.GetCookie(c, h.authConfig.Remember.CookieName)

	if err := h.logoutUseCase.Execute(c.Request.Context(), userID, rememberCookie); err != nil {
		h.logger.Warnw("failed to revoke remember token on logout", "user_id", userID, "error", err)
	}

	utils.ClearSessionCookie(c, h.authConfig.Cookie)
	utils.ClearRememberCookie(c, h.authConfig.Cookie, h.authConfig.Remember.CookieName)
	utils.ClearCSRFCookie(c, h.authConfig.Cookie)
	utils.SuccessResponse(c, http.StatusOK, "logout successful", nil)
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	u, err := h.accountUseCase.Register(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, u, "registration successful")
}

// Setup handles POST /setup, creating the first superuser. It refuses
// once any user exists.
func (h *AuthHandler) Setup(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	u, err := h.accountUseCase.Setup(c.Request.Context(), req.toCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, u, "administrator created")
}

// RequestPasswordReset handles POST /password-reset
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	err := h.requestResetUseCase.Execute(c.Request.Context(), usecases.RequestPasswordResetCommand{
		Email:    req.Email,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "if an account uses this address, a reset link has been sent", nil)
}

// PasswordResetForm handles GET /password-reset
func (h *AuthHandler) PasswordResetForm(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"fields": []string{"email"}})
}

// CheckPasswordReset handles GET /password-reset/confirm, the target of the
// mailed link. It validates the token without consuming it.
func (h *AuthHandler) CheckPasswordReset(c *gin.Context) {
	if err := h.confirmResetUseCase.Check(c.Request.Context(), c.Query("token")); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"valid":               true,
		"min_password_length": h.authConfig.Password.MinLength,
	})
}

// ConfirmPasswordReset handles POST /password-reset/confirm
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	err := h.confirmResetUseCase.Execute(c.Request.Context(), usecases.ConfirmPasswordResetCommand{
		Token:       req.Token,
		NewPassword: req.Password,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "password has been reset", nil)
}

// Me handles GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := common.CurrentUserID(c)
	if !ok {
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("authentication required"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"id":         userID,
		"email":      c.GetString(constants.ContextKeyUserEmail),
		"role":       authorization.CurrentRole(c).String(),
		"remembered": c.GetBool(constants.ContextKeyRemembered),
	})
}

// GetSettings handles GET /settings
func (h *AuthHandler) GetSettings(c *gin.Context) {
	s, err := h.settingsUseCase.Get(c.Request.Context(), common.Actor(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", s)
}

// SaveSettings handles PUT /settings
func (h *AuthHandler) SaveSettings(c *gin.Context) {
	var req dto.SettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}
	s, err := h.settingsUseCase.Save(c.Request.Context(), common.Actor(c), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "settings saved", s)
}
