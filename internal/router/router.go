package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/handlers"
	"github.com/taskpulse-dev/taskpulse/internal/middleware"
)

type Dependencies struct {
	Identity       handlers.IdentityService
	Tasks          handlers.TaskService
	Tokens         middleware.TokenVerifier
	Events         handlers.EventStream
	Webhook        handlers.WebhookSender
	Database       handlers.Pinger
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *zap.Logger
}

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

func NewRouter(deps Dependencies) *gin.Engine {
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handlers.NewAuthHandler(deps.Identity, deps.Logger)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Logger)
	requireAuth := middleware.AuthMiddleware(deps.Tokens)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck(deps.Database))
		api.GET("/ws", middleware.WebSocketAuth(deps.Tokens), handlers.WebSocket(deps.Events))

		auth := api.Group("/auth")
		{
			auth.POST("/register", deps.RateLimiter.Handler(), authHandler.Register)
			auth.POST("/login", deps.RateLimiter.Handler(), authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("", authHandler.ListUsers)
			users.PUT("/profile", authHandler.UpdateProfile)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		api.GET("/notifier/test", requireAuth, handlers.TestNotifier(deps.Webhook, deps.Logger))
	}

	return r
}
