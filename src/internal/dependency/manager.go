package dependency

import (
	"time"

	"gamingrealm-backend/src/clients"
	"gamingrealm-backend/src/internal/cache"
	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/credentials"
	"gamingrealm-backend/src/internal/post"
	"gamingrealm-backend/src/internal/session"
	"gamingrealm-backend/src/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Manager struct {
	Router       *gin.Engine
	Config       *config.Configuration
	Mongodb      *clients.MongoDB
	Redis        *clients.RedisClient
	RabbitMQ     *clients.RabbitMQ
	Storage      *clients.StorageClient
	Sessions     session.Store
	Hasher       *credentials.Hasher
	CacheService cache.Service
	UserService  user.Service
	UserHandler  user.Handler
	PostService  post.Service
	PostHandler  post.Handler
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) *Manager {

	sessions := newSessionStore(redisClient, cfg)
	hasher := credentials.NewHasher(&cfg.Security.Argon2)
	storage := clients.NewStorageClient(&cfg.Storage)
	cacheService := cache.NewCacheService(redisClient.Client, cfg)

	collections := cfg.Database.Collections
	userRepo := user.NewUserRepository(mongodb, collections.Users, collections.Followers)
	postRepo := post.NewPostRepository(mongodb,
		collections.Posts, collections.PostMedia, collections.Comments,
		collections.Ratings, collections.Tags)

	userService := user.NewUserService(userRepo, sessions, hasher, cfg)
	postService := post.NewPostService(postRepo, userRepo, storage, cacheService, cfg)

	userHandler := user.NewHandler(cfg, userService, postService, sessions, rabbitMQ)
	postHandler := post.NewHandler(cfg, postService, rabbitMQ)

	return &Manager{
		Router:       router,
		Config:       cfg,
		Mongodb:      mongodb,
		Redis:        redisClient,
		RabbitMQ:     rabbitMQ,
		Storage:      storage,
		Sessions:     sessions,
		Hasher:       hasher,
		CacheService: cacheService,
		UserService:  userService,
		UserHandler:  userHandler,
		PostService:  postService,
		PostHandler:  postHandler,
	}
}

// newSessionStore picks the session backend. The in-memory store enforces
// one session per user; the redis store allows several and relies on the
// login flow for cleanup.
func newSessionStore(redisClient *clients.RedisClient, cfg *config.Configuration) session.Store {
	switch cfg.Session.Backend {
	case "redis":
		ttl := time.Duration(cfg.Session.RedisTTLMinutes) * time.Minute
		logrus.WithField("ttl", ttl).Info("Using redis session store")
		return session.NewRedisStore(redisClient.Client, ttl)
	default:
		logrus.Info("Using in-memory session store")
		return session.NewMemoryStore()
	}
}
