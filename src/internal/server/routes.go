package server

import (
	"time"

	"gamingrealm-backend/src/clients"
	"gamingrealm-backend/src/internal/dependency"
	"gamingrealm-backend/src/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS)

	setupHealthEndpoints(deps)
	setupUserRoutes(router, deps)
	setupPostRoutes(router, deps)
}

func setupHealthEndpoints(deps *dependency.Manager) {
	router := deps.Router
	mongodb := deps.Mongodb
	redisClient := deps.Redis
	cfg := deps.Config

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Poooooong!"})
	})

	router.GET("/health", func(c *gin.Context) {
		log.Info("Health check endpoint requested")

		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mongodb":   getStatus(isMongoConnected(mongodb, c)),
			"redis":     getStatus(isRedisConnected(redisClient.Client, c)),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func setupUserRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := middleware.NewAuthMiddleware(
		deps.Sessions,
		deps.Config.Session.UserIDHeader,
		deps.Config.Session.SessionIDHeader,
	)

	handler := deps.UserHandler

	users := router.Group("/user")
	{
		users.POST("/signup", handler.Signup)
		users.POST("/login", handler.Login)
		users.POST("/logout", handler.Logout)
		users.GET("/:id", handler.GetUser)

		users.POST("/:id/follow", authMiddleware.RequireAuth(), handler.Follow)
		users.DELETE("/:id/follow", authMiddleware.RequireAuth(), handler.Unfollow)
	}
}

func setupPostRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := middleware.NewAuthMiddleware(
		deps.Sessions,
		deps.Config.Session.UserIDHeader,
		deps.Config.Session.SessionIDHeader,
	)

	handler := deps.PostHandler

	posts := router.Group("/post")
	{
		posts.GET("/", handler.GetPosts)
		posts.GET("/search", handler.SearchPosts)
		posts.GET("/:id", handler.GetPost)
		posts.GET("/:id/comments", handler.GetComments)

		posts.POST("/create", authMiddleware.RequireAuth(), handler.CreatePost)
		posts.DELETE("/:id", authMiddleware.RequireAuth(), handler.DeletePost)
		posts.POST("/:id/comments", authMiddleware.RequireAuth(), handler.CreateComment)
		posts.DELETE("/:id/comments/:commentID", authMiddleware.RequireAuth(), handler.DeleteComment)
		posts.POST("/:id/rating", authMiddleware.RequireAuth(), handler.RatePost)
	}

	router.GET("/tags/", handler.GetTags)
}

func isMongoConnected(mongodb *clients.MongoDB, c *gin.Context) bool {
	if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
		return false
	}
	return true
}

func isRedisConnected(redisClient *redis.Client, c *gin.Context) bool {
	if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
		return false
	}
	return true
}

func enableCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "*")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(204)
		return
	}

	c.Next()
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
