package api

import (
	"github.com/gin-gonic/gin"

	"github.com/NekruzRakhimov/todo-list/internal/api/auth"
	"github.com/NekruzRakhimov/todo-list/internal/api/task"
)

// SetupRouter configures all routes
func SetupRouter(r *gin.Engine, authHandler *auth.Handler, taskHandler *task.Handler) {
	r.Use(CORSMiddleware())

	// Health check
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"ping": "pong"})
	})

	// Auth routes (no authentication required)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/sign-up", authHandler.SignUp)
		authRoutes.POST("/sign-in", authHandler.SignIn)
	}

	// Task routes require a bearer token
	tasks := r.Group("/tasks")
	tasks.Use(authHandler.Middleware())
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.List)
		tasks.GET("/:id/details", taskHandler.Details)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
