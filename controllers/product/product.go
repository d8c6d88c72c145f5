package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/apierror"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/junaidrashid-git/cart-api/services"
)

// ProductInput mirrors the product schema. Numbers are pointers so that a
// legitimate 0 discount still counts as present.
type ProductInput struct {
	Title       string   `json:"title" binding:"required"`
	Price       *float64 `json:"price" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Discount    *float64 `json:"discount" binding:"required"`
	Total       *float64 `json:"total" binding:"required"`
	Image       string   `json:"image" binding:"required"`
	Image2      string   `json:"image2" binding:"required"`
	Category    *string  `json:"category"`
}

func GetProducts(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func GetProductByID(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func CreateProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(apierror.BadRequest("title, price, description, discount, total, image and image2 are required"))
			return
		}

		product := models.Product{
			Title:       input.Title,
			Price:       *input.Price,
			Description: input.Description,
			Discount:    *input.Discount,
			Total:       *input.Total,
			Image:       input.Image,
			Image2:      input.Image2,
			Category:    input.Category,
		}
		if err := svc.Create(c.Request.Context(), &product); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct applies only the fields present in the body.
func UpdateProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.ProductPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			_ = c.Error(apierror.BadRequest("Invalid product payload"))
			return
		}

		product, err := svc.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(svc *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
