package main

import (
	"log"

	"go-fairway/internal/api"
	"go-fairway/internal/cache"
	"go-fairway/internal/middleware"
	"go-fairway/internal/queue"
	"go-fairway/internal/repository"
	"go-fairway/internal/service"
	"go-fairway/internal/websocket"
	"go-fairway/pkg/config"
	"go-fairway/pkg/db"
	"go-fairway/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GlobalConfig

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.ProductionMode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		logger.L.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(conn); err != nil {
		logger.L.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Optional infrastructure. Both caches and the queue degrade to
	// no-ops when disabled or unreachable.
	var leaderboard *cache.LeaderboardCache
	if cfg.Redis.Enabled {
		rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		leaderboard = cache.NewLeaderboardCache(rdb, 0)
	}

	var publisher *queue.Publisher
	if cfg.Queue.Enabled {
		publisher = queue.NewPublisher(cfg.Queue.URL)
		go queue.StartActivityConsumer(cfg.Queue.URL)
	}

	hub := websocket.NewHub()
	go hub.Run()

	userRepo := repository.NewUserRepository(conn)
	courseRepo := repository.NewCourseRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	roundRepo := repository.NewRoundRepository(conn)
	scoreRepo := repository.NewScoreRepository(conn)
	friendRepo := repository.NewFriendRepository(conn)
	messageRepo := repository.NewChatMessageRepository(conn)

	authService := service.NewAuthService(userRepo)
	courseService := service.NewCourseService(courseRepo)
	sessionService := service.NewSessionService(sessionRepo, roundRepo, courseService, hub, leaderboard, publisher)
	roundService := service.NewRoundService(roundRepo, scoreRepo, courseRepo, sessionRepo, userRepo, hub, leaderboard, publisher)
	statsService := service.NewStatsService(roundRepo, scoreRepo)
	friendService := service.NewFriendService(friendRepo, userRepo)
	chatService := service.NewChatService(hub, messageRepo, sessionRepo, userRepo)

	authHandler := api.NewAuthHandler(authService)
	courseHandler := api.NewCourseHandler(courseService)
	sessionHandler := api.NewSessionHandler(sessionService)
	roundHandler := api.NewRoundHandler(roundService, statsService)
	friendHandler := api.NewFriendHandler(friendService)
	chatHandler := api.NewChatHandler(chatService)
	wsHandler := api.NewWSHandler(hub, chatService, sessionService)

	r := gin.New()
	r.Use(middleware.GinZapLogger(), gin.Recovery())

	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	// The websocket attach authenticates with a channel token instead of
	// the Authorization header.
	r.GET("/api/sessions/:id/ws", wsHandler.HandleConnection)

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(userRepo))
	{
		protected.GET("/users/me", authHandler.GetProfile)
		protected.PUT("/users/me", authHandler.UpdateProfile)

		protected.POST("/courses", courseHandler.CreateCourse)
		protected.GET("/courses", courseHandler.ListCourses)
		protected.GET("/courses/:id", courseHandler.GetCourse)

		protected.POST("/sessions", sessionHandler.Create)
		protected.POST("/sessions/join", sessionHandler.Join)
		protected.GET("/sessions/:id", sessionHandler.Get)
		protected.PUT("/sessions/:id/ready", sessionHandler.SetReady)
		protected.POST("/sessions/:id/start", sessionHandler.Start)
		protected.POST("/sessions/:id/end", sessionHandler.End)
		protected.POST("/sessions/:id/cancel", sessionHandler.Cancel)
		protected.POST("/sessions/:id/leave", sessionHandler.Leave)
		protected.GET("/sessions/:id/leaderboard", sessionHandler.Leaderboard)
		protected.POST("/sessions/:id/channel-token", sessionHandler.ChannelToken)
		protected.POST("/sessions/:id/chat", chatHandler.Send)
		protected.GET("/sessions/:id/chat", chatHandler.History)

		protected.POST("/rounds", roundHandler.Create)
		protected.GET("/rounds", roundHandler.List)
		protected.GET("/rounds/:id", roundHandler.Get)
		protected.PUT("/rounds/:id/scores", roundHandler.SaveScore)
		protected.POST("/rounds/:id/complete", roundHandler.Complete)
		protected.POST("/rounds/:id/abandon", roundHandler.Abandon)
		protected.GET("/rounds/:id/stats", roundHandler.Stats)

		protected.POST("/friends/requests", friendHandler.SendRequest)
		protected.GET("/friends/requests", friendHandler.ListPending)
		protected.POST("/friends/requests/:id/accept", friendHandler.Accept)
		protected.POST("/friends/requests/:id/decline", friendHandler.Decline)
		protected.GET("/friends", friendHandler.ListFriends)
	}

	logger.L.Info("Starting server", zap.String("addr", cfg.Server.Addr))
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.L.Fatal("Failed to start server", zap.Error(err))
	}
}
