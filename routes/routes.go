package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/middleware"
	"github.com/junaidrashid-git/cart-api/services"
)

// Dependencies is everything the route groups need.
type Dependencies struct {
	Carts    *services.CartService
	Products *services.ProductService

	UploadDir      string
	UploadMaxBytes int64
	UploadLimiter  *middleware.IPRateLimiter
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	SetupCartRoutes(r, deps.Carts)
	SetupProductRoutes(r, deps.Products)
	SetupUploadRoutes(r, deps)
}
