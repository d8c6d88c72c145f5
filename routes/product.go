package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/cart-api/controllers/product"
	"github.com/junaidrashid-git/cart-api/services"
)

// SetupProductRoutes registers all "/products/*" endpoints.
func SetupProductRoutes(r *gin.Engine, svc *services.ProductService) {
	productGroup := r.Group("/products")
	{
		productGroup.GET("", productcontroller.GetProducts(svc))
		productGroup.GET("/export-excel", productcontroller.ExportProductsToExcel(svc))
		productGroup.GET("/:id", productcontroller.GetProductByID(svc))
		productGroup.POST("", productcontroller.CreateProduct(svc))
		productGroup.PUT("/:id", productcontroller.UpdateProduct(svc))
		productGroup.DELETE("/:id", productcontroller.DeleteProduct(svc))
	}
}
