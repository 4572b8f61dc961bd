package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/perchsocial/perch/internal/api/controller"
	"github.com/perchsocial/perch/internal/api/middleware"
)

// RegisterRoutes wires all endpoints. The session secret is threaded in
// explicitly so the middleware never reads global state.
func RegisterRoutes(
	r *gin.Engine,
	sessionSecret string,
	authCtrl *controller.AuthController,
	userCtrl *controller.UserController,
	notifCtrl *controller.NotificationController,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	session := middleware.SessionAuth(sessionSecret)
	// Signup and login share a small per-IP budget.
	loginLimit := middleware.RateLimit(rate.Limit(1), 5)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", loginLimit, authCtrl.Signup)
		auth.POST("/login", loginLimit, authCtrl.Login)
		auth.POST("/logout", authCtrl.Logout)
		auth.GET("/me", session, authCtrl.Me)
	}

	users := r.Group("/api/users")
	{
		users.GET("/profile/:username", userCtrl.Profile)
		users.GET("/suggested", session, userCtrl.Suggested)
		users.POST("/follow/:id", session, userCtrl.FollowUnfollow)
		users.POST("/update", session, userCtrl.Update)
	}

	notifications := r.Group("/api/notifications", session)
	{
		notifications.GET("", notifCtrl.List)
		notifications.DELETE("", notifCtrl.Clear)
	}
}
