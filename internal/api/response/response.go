package response

import "github.com/gin-gonic/gin"

// Error writes the API's uniform failure shape.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}

// Message writes a bare confirmation payload.
func Message(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"message": msg})
}
