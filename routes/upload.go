package routes

import (
	"github.com/gin-gonic/gin"
	uploadControllers "github.com/junaidrashid-git/cart-api/controllers/upload"
)

// UploadsPrefix is the URL prefix stored uploads are served under.
const UploadsPrefix = "/uploads"

// SetupUploadRoutes registers POST /api/upload and serves stored files.
func SetupUploadRoutes(r *gin.Engine, deps Dependencies) {
	r.Static(UploadsPrefix, deps.UploadDir)

	apiGroup := r.Group("/api")
	if deps.UploadLimiter != nil {
		apiGroup.Use(deps.UploadLimiter.Middleware())
	}
	apiGroup.POST("/upload", uploadControllers.UploadFile(deps.UploadDir, UploadsPrefix, deps.UploadMaxBytes))
}
