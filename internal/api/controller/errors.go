package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/perchsocial/perch/internal/apperr"
	"github.com/perchsocial/perch/internal/api/response"
)

// writeError maps a classified business error to its HTTP status.
// Missing entities are 404 here; endpoints that report them as 400
// (login, follow) use writeErrorWith.
func writeError(c *gin.Context, err error) {
	writeErrorWith(c, err, http.StatusNotFound)
}

func writeErrorWith(c *gin.Context, err error, notFoundStatus int) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		// Unexpected failure; log the detail, leak nothing.
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch ae.Kind {
	case apperr.KindNotFound:
		response.Error(c, notFoundStatus, ae.Msg)
	default:
		// Validation, duplicate and credential failures are all client
		// errors on this API.
		response.Error(c, http.StatusBadRequest, ae.Msg)
	}
}
