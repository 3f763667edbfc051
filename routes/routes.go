// File: /routes/routes.go
package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"motoroutes-api/config"
	"motoroutes-api/controllers"
	_ "motoroutes-api/docs"
	"motoroutes-api/middleware"
	"motoroutes-api/repositories"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

const (
	mimeJSON      = "application/json"
	mimeMultipart = "multipart/form-data"
	mimeForm      = "application/x-www-form-urlencoded"
)

// NewRouter builds the engine with the global middleware chain and every API route.
// stop ends background housekeeping such as rate limiter cleanup.
func NewRouter(db *gorm.DB, cfg *config.Config, storage services.FileStorage, stop <-chan struct{}) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20

	metrics := middleware.NewMetrics()

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestScheme(cfg.TrustProxyHeaders))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(SetupCORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(metrics.Middleware())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst, stop))
	}
	r.Use(middleware.ErrorHandler())

	r.GET("/health", healthCheck(db))
	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if _, ok := storage.(*services.LocalStorage); ok {
		r.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)
	}

	SetupRoutes(r, db, cfg, storage)
	return r
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, storage services.FileStorage) {
	validate := utils.NewValidator()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	routeRepo := repositories.NewRouteRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	imageRepo := repositories.NewImageRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// Services
	tokenService := services.NewTokenService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(userRepo, storage, validate)
	routeService := services.NewRouteService(routeRepo, storage, validate)
	locationService := services.NewLocationService(locationRepo, routeRepo, storage, validate)
	imageService := services.NewImageService(imageRepo, routeRepo, locationRepo, storage, validate, cfg.ImageStrictTarget)
	commentService := services.NewCommentService(commentRepo, routeRepo)

	// Controllers
	authController := controllers.NewAuthController(tokenService)
	userController := controllers.NewUserController(userService, storage, cfg.PageSize, cfg.MaxUploadMB)
	routeController := controllers.NewRouteController(routeService, locationService, commentService, storage, cfg.PageSize)
	locationController := controllers.NewLocationController(locationService, storage, cfg.PageSize)
	imageController := controllers.NewImageController(imageService, storage, cfg.PageSize, cfg.MaxUploadMB)
	commentController := controllers.NewCommentController(commentService, storage, cfg.PageSize)

	requireAuth := middleware.RequireAuth()
	jsonBody := middleware.ContentTypes(mimeJSON)

	api := r.Group("/api")
	api.Use(middleware.Authenticate(tokenService))

	auth := api.Group("/auth", jsonBody)
	{
		auth.POST("/token/", authController.ObtainToken)
		auth.POST("/token/refresh/", authController.RefreshToken)
	}

	users := api.Group("/users")
	{
		users.GET("/", userController.GetUsers)
		users.POST("/register/", jsonBody, userController.Register)
		users.GET("/profile/", requireAuth, userController.GetProfile)

		profileBody := middleware.ContentTypes(mimeJSON, mimeMultipart, mimeForm)
		users.PUT("/profile/", requireAuth, profileBody, userController.UpdateProfile)
		users.PATCH("/profile/", requireAuth, profileBody, userController.UpdateProfile)
		users.GET("/:id/", userController.GetUser)
	}

	routes := api.Group("/routes")
	{
		routes.GET("/", routeController.GetRoutes)
		routes.POST("/", requireAuth, jsonBody, routeController.CreateRoute)
		routes.GET("/:id/", routeController.GetRoute)
		routes.PUT("/:id/", requireAuth, jsonBody, routeController.UpdateRoute)
		routes.PATCH("/:id/", requireAuth, jsonBody, routeController.UpdateRoute)
		routes.DELETE("/:id/", requireAuth, routeController.DeleteRoute)
		routes.GET("/user/:user_id/", routeController.GetUserRoutes)
		routes.GET("/:id/locations/", routeController.GetRouteLocations)
		routes.GET("/:id/comments/", routeController.GetRouteComments)
	}

	locations := routes.Group("/locations")
	{
		locations.GET("/", locationController.GetLocations)
		locations.POST("/", requireAuth, jsonBody, locationController.CreateLocation)
		locations.GET("/:id/", locationController.GetLocation)
		locations.PUT("/:id/", requireAuth, jsonBody, locationController.UpdateLocation)
		locations.PATCH("/:id/", requireAuth, jsonBody, locationController.UpdateLocation)
		locations.DELETE("/:id/", requireAuth, locationController.DeleteLocation)
	}

	images := routes.Group("/images")
	{
		images.GET("/", imageController.GetImages)
		images.POST("/", requireAuth, middleware.ContentTypes(mimeMultipart, mimeForm), imageController.UploadImage)
		images.GET("/:id/", imageController.GetImage)
		images.DELETE("/:id/", requireAuth, imageController.DeleteImage)
	}

	comments := routes.Group("/comments")
	{
		comments.GET("/", commentController.GetComments)
		comments.POST("/", requireAuth, jsonBody, commentController.CreateComment)
		comments.GET("/:id/", commentController.GetComment)
		comments.PUT("/:id/", requireAuth, jsonBody, commentController.UpdateComment)
		comments.PATCH("/:id/", requireAuth, jsonBody, commentController.UpdateComment)
		comments.DELETE("/:id/", requireAuth, commentController.DeleteComment)
	}
}

func SetupCORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	}
}
