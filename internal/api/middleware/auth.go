package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perchsocial/perch/internal/api/response"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "jwt"

const userIDKey = "userID"

// SessionAuth verifies the session cookie and injects the caller's user
// id into the request context. Verification is stateless: a valid
// signature plus an unexpired exp claim is trusted as-is.
func SessionAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: no token provided")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token claims")
			c.Abort()
			return
		}
		hex, ok := claims["user_id"].(string)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token claims")
			c.Abort()
			return
		}
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Unauthorized: invalid token claims")
			c.Abort()
			return
		}

		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserID returns the authenticated caller's id set by SessionAuth.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
