package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perchsocial/perch/internal/api/middleware"
	"github.com/perchsocial/perch/internal/api/response"
	"github.com/perchsocial/perch/internal/service"
)

// UserController handles profiles, suggestions and the follow graph.
type UserController struct {
	users *service.UserService
}

func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

// Profile returns the public projection for a username.
func (ctrl *UserController) Profile(c *gin.Context) {
	user, err := ctrl.users.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Suggested returns up to 10 users the caller does not follow yet.
func (ctrl *UserController) Suggested(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}

	users, err := ctrl.users.Suggested(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// FollowUnfollow toggles the follow edge towards the :id user.
func (ctrl *UserController) FollowUnfollow(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	followed, err := ctrl.users.FollowUnfollow(c.Request.Context(), userID, targetID)
	if err != nil {
		writeErrorWith(c, err, http.StatusBadRequest)
		return
	}

	if followed {
		response.Message(c, http.StatusOK, "User followed successfully")
	} else {
		response.Message(c, http.StatusOK, "User unfollowed successfully")
	}
}

type UpdateProfileRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ProfileImage    string `json:"profileImage"`
	CoverImage      string `json:"coverImage"`
}

// Update merges the provided fields into the caller's profile.
func (ctrl *UserController) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := ctrl.users.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Username:        req.Username,
		Bio:             req.Bio,
		Link:            req.Link,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfileImage:    req.ProfileImage,
		CoverImage:      req.CoverImage,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User profile updated successfully",
		"user":    user,
	})
}
