package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	wishlistsvc "storefront/internal/service/wishlist"
)

// Mutations answer with the whole resource so clients can replace their
// local copy instead of patching it.
type cartResponse struct {
	Message string       `json:"message"`
	Cart    *domain.Cart `json:"cart"`
}

type wishlistResponse struct {
	Message  string           `json:"message"`
	Wishlist *domain.Wishlist `json:"wishlist"`
}

func getCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func addCartItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartsvc.AddInput
		if !bindJSON(c, &req) {
			return
		}
		cart, err := svc.Add(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Message: "Product added to cart", Cart: cart})
	}
}

func updateCartItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := pathID(c, "itemId")
		if !ok {
			return
		}
		var req cartsvc.UpdateInput
		if !bindJSON(c, &req) {
			return
		}
		cart, err := svc.SetQuantity(c.Request.Context(), currentUser(c).ID, itemID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Message: "Cart updated", Cart: cart})
	}
}

func removeCartItemHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := pathID(c, "itemId")
		if !ok {
			return
		}
		cart, err := svc.Remove(c.Request.Context(), currentUser(c).ID, itemID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{Message: "Item removed from cart", Cart: cart})
	}
}

// clearCartHandler answers with a message only.
func clearCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), currentUser(c).ID); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, messageResponse{Message: "Cart cleared"})
	}
}

func getWishlistHandler(svc wishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		wl, err := svc.Get(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, wl)
	}
}

func addWishlistItemHandler(svc wishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req wishlistsvc.AddInput
		if !bindJSON(c, &req) {
			return
		}
		wl, err := svc.Add(c.Request.Context(), currentUser(c).ID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, wishlistResponse{Message: "Product added to wishlist", Wishlist: wl})
	}
}

func removeWishlistItemHandler(svc wishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := pathID(c, "itemId")
		if !ok {
			return
		}
		wl, err := svc.Remove(c.Request.Context(), currentUser(c).ID, itemID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, wishlistResponse{Message: "Item removed from wishlist", Wishlist: wl})
	}
}
