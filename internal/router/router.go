package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AyaOsaama/furniture-api/internal/handlers"
	"github.com/AyaOsaama/furniture-api/internal/middleware"
)

type Handlers struct {
	Cart        *handlers.CartHandler
	Product     *handlers.ProductHandler
	Rating      *handlers.RatingHandler
	Wishlist    *handlers.WishlistHandler
	Subcategory *handlers.SubcategoryHandler
	Order       *handlers.OrderHandler
}

type Options struct {
	JWTSecret string
	UploadDir string
	// UploadBaseURL is the public path uploads are served under.
	UploadBaseURL string
}

// New wires every route. Analytics routes are registered before the
// parameterized ones so the static segments win.
func New(h Handlers, opts Options) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.Static(opts.UploadBaseURL, opts.UploadDir)

	api := router.Group("/api")
	auth := middleware.Auth(opts.JWTSecret)

	cart := api.Group("/cart", auth)
	{
		cart.POST("", h.Cart.AddToCart)
		cart.GET("", h.Cart.GetCart)
		cart.GET("/total-items", h.Cart.GetTotalCartItems)
		cart.GET("/total-value", h.Cart.GetTotalCartValue)
		cart.GET("/top-products", h.Cart.GetTopProductsInCart)
		cart.GET("/users-with-items", h.Cart.GetUsersWithCartItems)
		cart.DELETE("/clear", h.Cart.ClearCart)
		cart.PATCH("/:cartItemId", h.Cart.UpdateCartItem)
		cart.DELETE("/:cartItemId", h.Cart.DeleteCartItem)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Product.CreateProduct)
		products.GET("", h.Product.GetAllProducts)
		products.GET("/analytics/total", h.Product.GetTotalProducts)
		products.GET("/analytics/variants", h.Product.GetTotalVariants)
		products.GET("/analytics/brands", h.Product.GetBrandsCount)
		products.GET("/analytics/top-rated", h.Product.GetTopRatedVariants)
		products.GET("/analytics/discounted", h.Product.GetDiscountedVariantsCount)
		products.GET("/analytics/low-stock", h.Product.GetLowStockVariants)
		products.GET("/tag/:tag", h.Product.GetProductsByTag)
		products.GET("/:id", h.Product.GetProductByID)
		products.PATCH("/:id", h.Product.UpdateProduct)
		products.DELETE("/:id", h.Product.DeleteProduct)
		products.GET("/:id/related", h.Product.GetRelatedProducts)
		products.POST("/:id/variants", h.Product.AddVariant)
		products.PATCH("/:id/variants/:variantId", h.Product.UpdateVariant)
		products.DELETE("/:id/variants/:variantId", h.Product.DeleteVariant)
	}

	ratings := api.Group("/ratings")
	{
		ratings.POST("", h.Rating.CreateRating)
		ratings.GET("", h.Rating.GetAllRatings)
		ratings.GET("/total", h.Rating.GetTotalRatings)
		ratings.GET("/average", h.Rating.GetAverageRating)
		ratings.GET("/distribution", h.Rating.GetRatingDistribution)
		ratings.GET("/most-rated-products", h.Rating.GetMostRatedProducts)
		ratings.GET("/with-comments", h.Rating.GetRatingsWithComments)
		ratings.GET("/:id", h.Rating.GetRatingByID)
		ratings.DELETE("/:id", h.Rating.DeleteRating)
		ratings.DELETE("/:id/comment", h.Rating.ClearRatingComment)
	}

	wishlist := api.Group("/wishlist", auth)
	{
		wishlist.GET("", h.Wishlist.GetWishlist)
		wishlist.POST("", h.Wishlist.AddToWishlist)
		wishlist.POST("/toggle", h.Wishlist.ToggleWishlist)
		wishlist.DELETE("/:productId", h.Wishlist.RemoveFromWishlist)
	}

	subcategories := api.Group("/subcategories")
	{
		subcategories.POST("", h.Subcategory.CreateSubcategory)
		subcategories.GET("", h.Subcategory.GetAllSubcategories)
		subcategories.GET("/:id", h.Subcategory.GetSubcategoryByID)
		subcategories.PATCH("/:id", h.Subcategory.UpdateSubcategory)
		subcategories.DELETE("/:id", h.Subcategory.DeleteSubcategory)
	}

	orders := api.Group("/orders", auth)
	{
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.GetMyOrders)
		orders.GET("/:id", h.Order.GetOrderByID)
		orders.PATCH("/:id/status", h.Order.UpdateOrderStatus)
	}

	return router
}
