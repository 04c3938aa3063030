package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pos-joalheria/internal/adapter/api/controller"
	"github.com/hugohenrick/pos-joalheria/pkg/auth"
	"github.com/hugohenrick/pos-joalheria/pkg/middleware"
)

// RegisterProductRoutes registra as rotas do módulo de produtos
func RegisterProductRoutes(r *gin.RouterGroup, jwtService *auth.JWTService, productController *controller.ProductController) {
	products := r.Group("/products")
	products.Use(middleware.AuthMiddleware(jwtService))
	{
		products.POST("", productController.Create)
		products.GET("", productController.List)
		products.GET("/:id", productController.Get)
		products.PUT("/:id", productController.Update)
		products.DELETE("/:id", productController.Delete)
		products.POST("/:id/stock", productController.AdjustStock)
	}
}
