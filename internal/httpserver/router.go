package httpserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
	wishlistsvc "storefront/internal/service/wishlist"
)

type authService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

type cartService interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Add(ctx context.Context, userID int64, in cartsvc.AddInput) (*domain.Cart, error)
	SetQuantity(ctx context.Context, userID, itemID int64, in cartsvc.UpdateInput) (*domain.Cart, error)
	Remove(ctx context.Context, userID, itemID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type wishlistService interface {
	Get(ctx context.Context, userID int64) (*domain.Wishlist, error)
	Add(ctx context.Context, userID int64, in wishlistsvc.AddInput) (*domain.Wishlist, error)
	Remove(ctx context.Context, userID, itemID int64) (*domain.Wishlist, error)
}

type orderService interface {
	Place(ctx context.Context, userID int64, in ordersvc.PlaceInput) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Confirm(ctx context.Context, orderID int64) (*domain.Order, error)
}

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id int64, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the services the router dispatches to. DB is optional.
type Deps struct {
	AuthSvc     authService
	CartSvc     cartService
	WishlistSvc wishlistService
	OrderSvc    orderService
	ProductSvc  productService
	CategorySvc categoryService
	DB          Pinger
}

func (d Deps) validate() error {
	switch {
	case d.AuthSvc == nil:
		return errors.New("auth service required")
	case d.CartSvc == nil:
		return errors.New("cart service required")
	case d.WishlistSvc == nil:
		return errors.New("wishlist service required")
	case d.OrderSvc == nil:
		return errors.New("order service required")
	case d.ProductSvc == nil:
		return errors.New("product service required")
	case d.CategorySvc == nil:
		return errors.New("category service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))

	base := "/" + strings.Trim(opts.BasePath, "/")
	if base == "/" {
		base = "/api"
	}
	api := router.Group(base)

	api.POST("/login", loginHandler(deps.AuthSvc))
	api.POST("/register", registerHandler(deps.AuthSvc))
	api.GET("/products", listProductsHandler(deps.ProductSvc))
	api.GET("/products/:id", getProductHandler(deps.ProductSvc))
	api.GET("/categories", listCategoriesHandler(deps.CategorySvc))

	authed := api.Group("", authMiddleware(deps.AuthSvc))
	authed.POST("/logout", logoutHandler(deps.AuthSvc))
	authed.GET("/user", profileHandler)

	authed.GET("/cart", getCartHandler(deps.CartSvc))
	authed.POST("/cart", addCartItemHandler(deps.CartSvc))
	authed.PUT("/cart/:itemId", updateCartItemHandler(deps.CartSvc))
	authed.DELETE("/cart/:itemId", removeCartItemHandler(deps.CartSvc))
	authed.DELETE("/cart-clear", clearCartHandler(deps.CartSvc))

	authed.GET("/wishlist", getWishlistHandler(deps.WishlistSvc))
	authed.POST("/wishlist", addWishlistItemHandler(deps.WishlistSvc))
	authed.DELETE("/wishlist/:itemId", removeWishlistItemHandler(deps.WishlistSvc))

	authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
	authed.POST("/orders", placeOrderHandler(deps.OrderSvc))

	admin := authed.Group("", adminMiddleware())
	admin.GET("/admin/orders", adminListOrdersHandler(deps.OrderSvc))
	admin.PUT("/orders/:id/confirm", confirmOrderHandler(deps.OrderSvc))
	admin.POST("/products", createProductHandler(deps.ProductSvc))
	admin.PUT("/products/:id", updateProductHandler(deps.ProductSvc))
	admin.DELETE("/products/:id", deleteProductHandler(deps.ProductSvc))

	return router, nil
}
