package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/cart-api/controllers/cart"
	"github.com/junaidrashid-git/cart-api/services"
)

// SetupCartRoutes registers all "/carts/*" endpoints.
func SetupCartRoutes(r *gin.Engine, svc *services.CartService) {
	cartGroup := r.Group("/carts")
	{
		cartGroup.GET("", cartControllers.GetAllCarts(svc))                   // GET /carts
		cartGroup.GET("/:id", cartControllers.GetCartDetail(svc))             // GET /carts/:id
		cartGroup.GET("/user/:id", cartControllers.GetCartByUser(svc))        // GET /carts/user/:id
		cartGroup.POST("", cartControllers.CreateCart(svc))                   // POST /carts
		cartGroup.PUT("/:id", cartControllers.UpdateCart(svc))                // PUT /carts/:id
		cartGroup.PUT("/product/:id", cartControllers.UpdateProductCart(svc)) // PUT /carts/product/:id
		cartGroup.DELETE("/:id", cartControllers.DeleteCart(svc))             // DELETE /carts/:id
		cartGroup.DELETE("/userid/:userid/productid/:productid", cartControllers.DeleteProductCart(svc))
	}
}
