package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-hub/scheduling-api/internal/middleware"
	"github.com/campus-hub/scheduling-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func viewerFromContext(c *gin.Context) models.Viewer {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Viewer{}
	}
	return models.Viewer{UserID: claims.UserID, Role: claims.Role}
}
