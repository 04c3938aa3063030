package route

import (
	"github.com/gin-gonic/gin"

	"github.com/hugohenrick/pos-joalheria/internal/adapter/api/controller"
	"github.com/hugohenrick/pos-joalheria/pkg/auth"
	"github.com/hugohenrick/pos-joalheria/pkg/middleware"
)

// RegisterSaleRoutes registra as rotas de vendas e memos
func RegisterSaleRoutes(r *gin.RouterGroup, jwtService *auth.JWTService, saleController *controller.SaleController) {
	sales := r.Group("/sales")
	sales.Use(middleware.AuthMiddleware(jwtService))
	{
		sales.POST("", saleController.Checkout)
		sales.POST("/preview", saleController.Preview)
		sales.GET("", saleController.List)
		sales.GET("/:id", saleController.Get)
	}

	memos := r.Group("/memos")
	memos.Use(middleware.AuthMiddleware(jwtService))
	{
		memos.GET("", saleController.ListMemos)
		memos.POST("/:id/convert", saleController.Convert)
		memos.POST("/:id/return", saleController.Return)
	}
}
