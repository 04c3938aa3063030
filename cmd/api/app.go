package main

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hugohenrick/pos-joalheria/internal/adapter/api/controller"
	"github.com/hugohenrick/pos-joalheria/internal/adapter/api/route"
	"github.com/hugohenrick/pos-joalheria/internal/adapter/notification"
	"github.com/hugohenrick/pos-joalheria/internal/adapter/repository"
	"github.com/hugohenrick/pos-joalheria/internal/infrastructure/database"
	"github.com/hugohenrick/pos-joalheria/internal/service/checkout"
	"github.com/hugohenrick/pos-joalheria/pkg/auth"
	"github.com/hugohenrick/pos-joalheria/pkg/logger"
)

// App representa a aplicação e suas dependências
type App struct {
	router     *gin.Engine
	db         *pgxpool.Pool
	jwtService *auth.JWTService

	saleController     *controller.SaleController
	productController  *controller.ProductController
	customerController *controller.CustomerController
	authController     *controller.AuthController
}

// NewApp cria uma nova instância do aplicativo com todas as dependências
func NewApp() (*App, error) {
	log := logger.NewLogger()

	db, err := database.NewPostgresDB()
	if err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService()
	if err != nil {
		return nil, err
	}

	// Criar repositórios
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	logRepo := repository.NewInventoryLogRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Criar o despachante de notificações e o serviço de checkout
	dispatcher := notification.NewLogDispatcher(db, userRepo, log)

	checkoutService := checkout.NewService(
		productRepo,
		customerRepo,
		saleRepo,
		logRepo,
		dispatcher,
		log,
		checkout.Config{
			AllowNegativeStock: getEnvBool("ALLOW_NEGATIVE_STOCK"),
			DefaultMemoDays:    getEnvInt("MEMO_DEFAULT_DAYS", 7),
		},
	)

	// Criar controllers
	saleController := controller.NewSaleController(checkoutService, saleRepo, log)
	productController := controller.NewProductController(productRepo, log)
	customerController := controller.NewCustomerController(customerRepo, log)
	authController := controller.NewAuthController(userRepo, jwtService, log)

	// Configurar router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	return &App{
		router:             router,
		db:                 db,
		jwtService:         jwtService,
		saleController:     saleController,
		productController:  productController,
		customerController: customerController,
		authController:     authController,
	}, nil
}

// SetupRoutes configura as rotas da aplicação
func (a *App) SetupRoutes(basePath string) {
	api := a.router.Group(basePath)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	route.RegisterAuthRoutes(api, a.authController)
	route.RegisterSaleRoutes(api, a.jwtService, a.saleController)
	route.RegisterProductRoutes(api, a.jwtService, a.productController)
	route.RegisterCustomerRoutes(api, a.jwtService, a.customerController)

	// Documentação Swagger
	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))
}

// Start configura as rotas e inicia o servidor HTTP
func (a *App) Start() error {
	a.SetupRoutes("/api/v1")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return a.router.Run(":" + port)
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
