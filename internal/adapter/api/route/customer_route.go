package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pos-joalheria/internal/adapter/api/controller"
	"github.com/hugohenrick/pos-joalheria/pkg/auth"
	"github.com/hugohenrick/pos-joalheria/pkg/middleware"
)

// RegisterCustomerRoutes registra as rotas do módulo de clientes
func RegisterCustomerRoutes(r *gin.RouterGroup, jwtService *auth.JWTService, customerController *controller.CustomerController) {
	customers := r.Group("/customers")
	customers.Use(middleware.AuthMiddleware(jwtService))
	{
		customers.POST("", customerController.Create)
		customers.GET("", customerController.List)
		customers.GET("/:id", customerController.Get)
		customers.PUT("/:id", customerController.Update)
		customers.DELETE("/:id", customerController.Delete)
	}
}
