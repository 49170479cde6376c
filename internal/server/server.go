package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/oauth"
	"taskboard/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Log    *logrus.Logger
}

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Users    handler.UserStore
	Boards   handler.BoardStore
	Tasks    handler.TaskStore
	Tokens   *auth.TokenIssuer
	Linker   handler.IdentityLinker
	Provider oauth.Provider
	States   oauth.StateStore
	Ping     func(ctx context.Context) error
}

func Init(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	db, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	log.Info("connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		log.Info("database schema is up to date")
	}

	var (
		states oauth.StateStore
		rdb    *redis.Client
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		states = oauth.NewRedisStateStore(rdb, cfg.OAuthStateTTL)
		log.Info("oauth state store: redis")
	} else {
		states = oauth.NewMemoryStateStore(cfg.OAuthStateTTL)
		log.Warn("REDIS_URL not set, oauth state is kept in process memory")
	}

	userRepo := repository.NewUserRepository(db)
	deps := Dependencies{
		Users:    userRepo,
		Boards:   repository.NewBoardRepository(db),
		Tasks:    repository.NewTaskRepository(db),
		Tokens:   auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL),
		Linker:   auth.NewIdentityLinker(userRepo),
		Provider: oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL),
		States:   states,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := NewRouter(cfg, log, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: r,
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Log:    log,
	}, nil
}

// NewRouter mounts every route under /api plus the health and docs endpoints.
func NewRouter(cfg *config.Config, log logrus.FieldLogger, deps Dependencies) (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := handler.NewAuthHandler(handler.AuthHandlerConfig{
		Users:       deps.Users,
		Tokens:      deps.Tokens,
		Linker:      deps.Linker,
		Provider:    deps.Provider,
		States:      deps.States,
		FrontendURL: cfg.FrontendURL,
		Log:         log,
	})
	boardHandler := handler.NewBoardHandler(deps.Boards, log)
	taskHandler := handler.NewTaskHandler(deps.Boards, deps.Tasks, log)
	healthHandler := handler.NewHealthHandler(deps.Ping, log)

	r.GET("/health", healthHandler.Check)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/google", authHandler.GoogleLogin)
	api.GET("/auth/google/callback", authHandler.GoogleCallback)

	// Protected routes
	authorized := api.Group("")
	authorized.Use(middleware.JWTAuthMiddleware(deps.Tokens))
	{
		authorized.GET("/auth/me", authHandler.Me)
		authorized.DELETE("/auth/me", authHandler.DeleteMe)

		authorized.GET("/boards", boardHandler.List)
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards/:boardId", boardHandler.Get)
		authorized.PUT("/boards/:boardId", boardHandler.Update)
		authorized.DELETE("/boards/:boardId", boardHandler.Delete)

		authorized.GET("/boards/:boardId/tasks", taskHandler.ListByBoard)
		authorized.POST("/boards/:boardId/tasks", taskHandler.Create)
		authorized.GET("/tasks/:taskId", taskHandler.Get)
		authorized.PUT("/tasks/:taskId", taskHandler.Update)
		authorized.DELETE("/tasks/:taskId", taskHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "Not found"})
	})

	return r, nil
}

// Run serves until SIGINT or SIGTERM and then drains in-flight requests.
// The database pool and Redis client are closed on every return path.
func (s *Server) Run() error {
	defer s.close()

	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.WithField("port", s.Config.ServerPort).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		s.Log.WithField("signal", sig.String()).Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	s.Log.Info("server exited properly")
	return nil
}

func (s *Server) close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Log.WithError(err).Warn("close redis")
		}
	}
	if s.DB == nil {
		return
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.Log.WithError(err).Warn("close database")
		}
	}
}
