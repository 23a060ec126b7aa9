package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

// RegisterRoutes mounts the customer and manager front ends behind guards,
// plus the unauthenticated operational endpoints.
func RegisterRoutes(router *gin.Engine, handler *Handler, checker HealthChecker, guards ...gin.HandlerFunc) {
	customer := router.Group("/customer/products", guards...)
	customer.GET("/list", handler.ProductsList)
	customer.GET("/favourites", handler.FavouriteProducts)
	customer.GET("/:id", handler.ProductPage)
	customer.POST("/:id/add-to-favourites", handler.AddFavourite)
	customer.POST("/:id/remove-from-favourites", handler.RemoveFavourite)
	customer.POST("/:id/create-review", handler.CreateReview)

	catalog := router.Group("/catalog/products", guards...)
	catalog.GET("/list", handler.CatalogList)
	catalog.POST("/create", handler.CreateProduct)
	catalog.GET("/:id", handler.CatalogProduct)
	catalog.POST("/:id/edit", handler.UpdateProduct)
	catalog.POST("/:id/delete", handler.DeleteProduct)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
