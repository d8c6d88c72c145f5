package cartControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/apierror"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/junaidrashid-git/cart-api/services"
)

// CartItemInput is the body of POST /carts and PUT /carts/product/:id.
// binding:"required" rejects a zero quantity the same way as a missing one.
type CartItemInput struct {
	Quantity int    `json:"quantity" binding:"required"`
	User     string `json:"user" binding:"required"`
	Product  string `json:"product" binding:"required"`
}

var errMissingFields = apierror.BadRequest("Missing required fields")

func bindCartItem(c *gin.Context) (*CartItemInput, bool) {
	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(errMissingFields)
		return nil, false
	}
	input.User = strings.TrimSpace(input.User)
	input.Product = strings.TrimSpace(input.Product)
	if input.User == "" || input.Product == "" {
		_ = c.Error(errMissingFields)
		return nil, false
	}
	return &input, true
}

// GET /carts
func GetAllCarts(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		carts, err := svc.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, carts)
	}
}

// GET /carts/:id
func GetCartDetail(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// GET /carts/user/:id
func GetCartByUser(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.GetByUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /carts
func CreateCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindCartItem(c)
		if !ok {
			return
		}

		cart, created, err := svc.AddToCart(c.Request.Context(), input.User, input.Product, input.Quantity)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if created {
			c.JSON(http.StatusCreated, gin.H{"message": "Add Cart Successfully", "data": cart})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart updated successfully", "data": cart})
	}
}

// PUT /carts/product/:id
// The path id is ignored, the cart is located by the user in the body.
func UpdateProductCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindCartItem(c)
		if !ok {
			return
		}

		cart, err := svc.SetQuantity(c.Request.Context(), input.User, input.Product, input.Quantity)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Update Cart Successfully", "data": cart})
	}
}

// DELETE /carts/userid/:userid/productid/:productid
func DeleteProductCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := strings.TrimSpace(c.Param("userid"))
		product := strings.TrimSpace(c.Param("productid"))
		if user == "" || product == "" {
			_ = c.Error(apierror.BadRequest("User or Product ID is missing"))
			return
		}

		cart, err := svc.RemoveProduct(c.Request.Context(), user, product)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Delete Product Cart Successfully", "data": cart})
	}
}

// PUT /carts/:id
// Low-level overwrite of the user and/or products fields. Line items are
// stored as sent, without merging duplicates.
func UpdateCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.CartPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			_ = c.Error(apierror.BadRequest("Invalid cart payload"))
			return
		}

		cart, err := svc.Replace(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Update Cart Successfully", "data": cart})
	}
}

// DELETE /carts/:id
func DeleteCart(svc *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Delete Cart Successfully"})
	}
}
