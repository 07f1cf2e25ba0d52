package handler

import (
	"github.com/gin-gonic/gin"

	"comichub/internal/apperr"
)

// respondError translates a service error into the status code its kind
// maps to. Unknown errors stay opaque 500s.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}
