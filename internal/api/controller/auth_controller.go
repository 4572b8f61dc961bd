package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/perchsocial/perch/internal/api/middleware"
	"github.com/perchsocial/perch/internal/api/response"
	"github.com/perchsocial/perch/internal/service"
)

// AuthController handles signup, login, logout and session lookups.
type AuthController struct {
	auth          *service.AuthService
	secureCookies bool
}

func NewAuthController(auth *service.AuthService, secureCookies bool) *AuthController {
	return &AuthController{auth: auth, secureCookies: secureCookies}
}

type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates an account. The session cookie is issued only after
// the user document is durably saved.
func (ctrl *AuthController) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := ctrl.auth.Signup(c.Request.Context(), service.SignupInput{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("user signed up", "username", user.Username)
	ctrl.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues the session cookie. A missing
// user is reported as 400 to match the rest of the auth group.
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := ctrl.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeErrorWith(c, err, http.StatusBadRequest)
		return
	}

	slog.Info("user logged in", "username", user.Username)
	ctrl.setSessionCookie(c, token)
	c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie. Idempotent: succeeds whether or not
// a session was present.
func (ctrl *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ctrl.secureCookies, true)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// Me returns the caller behind the verified session.
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}

	user, err := ctrl.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctrl *AuthController) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(ctrl.auth.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", ctrl.secureCookies, true)
}
