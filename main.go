package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"session-service/internal/auth"
	"session-service/internal/cache"
	"session-service/internal/chat"
	"session-service/internal/db"
	"session-service/internal/handlers"
	"session-service/internal/middleware"
	"session-service/internal/observability"
	"session-service/internal/rabbitmq"
	"session-service/internal/repositories"
	"session-service/internal/scheduler"
	"session-service/internal/storage"
	"session-service/internal/telemetry"
	"session-service/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(ctx, "session-service", getEnv("OTLP_ENDPOINT", ""))
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Printf("tracing shutdown error: %v", err)
			}
		}()
	}

	amqpURL := getEnv("AMQP_URL", "")
	exchange := getEnv("AMQP_EXCHANGE", "platform.events")

	auditPublisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s reason=%q", rabbitmq.PublisherMode(auditPublisher), rabbitmq.PublisherNoopReason(auditPublisher))

	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit_logs.sessions", "session-service", getEnv("ENVIRONMENT", "dev"))

	if eventPublisher, err := observability.NewAMQPPublisher(amqpURL, exchange); err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	sessionRepo := repositories.NewSessionRepo(database)
	participantRepo := repositories.NewParticipantRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	postRepo := repositories.NewPostRepo(database)
	commentRepo := repositories.NewCommentRepo(database)
	followRepo := repositories.NewFollowRepo(database)

	memberships := cache.NewMembershipCache(
		getEnv("REDIS_ADDR", ""),
		getEnv("REDIS_PASSWORD", ""),
		envInt("REDIS_DB", 0),
		time.Duration(envInt("MEMBERSHIP_CACHE_TTL_SECONDS", 300))*time.Second,
	)

	var uploader storage.Uploader
	if minioUploader := storage.NewMinioUploader(
		getEnv("MINIO_ENDPOINT", ""),
		getEnv("MINIO_ACCESS_KEY", ""),
		getEnv("MINIO_SECRET_KEY", ""),
		getEnv("MINIO_BUCKET", "media"),
		getEnv("MINIO_USE_SSL", "false") == "true",
	); minioUploader != nil {
		uploader = minioUploader
	}

	hub := ws.NewHub()
	relay := chat.NewRelay(sessionRepo, participantRepo, messageRepo, hub)

	verifier := auth.NewVerifier(getEnv("JWT_SECRET", "dev-secret"))

	sessionHandler := handlers.NewSessionHandler(sessionRepo, participantRepo, groupRepo, memberships, auditEmitter)
	chatHandler := handlers.NewChatHandler(relay)
	groupHandler := handlers.NewGroupHandler(groupRepo, memberships)
	postHandler := handlers.NewPostHandler(postRepo, commentRepo, followRepo, uploader)
	sessionWS := ws.NewSessionWebSocketHandler(hub, sessionRepo, participantRepo, relay, verifier)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("session-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.POST("/groups/:group_id/sessions", authMiddleware, sessionHandler.CreateSession)
	router.GET("/groups/:group_id/sessions", authMiddleware, sessionHandler.ListSessions)

	router.POST("/sessions/:session_id/join", authMiddleware, sessionHandler.JoinSession)
	router.POST("/sessions/:session_id/leave", authMiddleware, sessionHandler.LeaveSession)
	router.GET("/sessions/:session_id/participants", authMiddleware, sessionHandler.ListParticipants)
	router.POST("/sessions/:session_id/messages", authMiddleware, chatHandler.PostMessage)
	router.GET("/sessions/:session_id/messages", authMiddleware, chatHandler.GetHistory)

	router.POST("/posts", authMiddleware, postHandler.CreatePost)
	router.POST("/posts/:post_id/comments", authMiddleware, postHandler.CreateComment)
	router.GET("/posts/:post_id/comments", authMiddleware, postHandler.ListComments)
	router.POST("/posts/:post_id/like", authMiddleware, postHandler.LikePost)
	router.DELETE("/posts/:post_id/like", authMiddleware, postHandler.UnlikePost)
	router.GET("/posts/:post_id/likes", authMiddleware, postHandler.GetLikeCount)
	router.GET("/feed", authMiddleware, postHandler.GetFeed)
	router.GET("/feed/following", authMiddleware, postHandler.GetFollowingFeed)
	router.GET("/users/:user_id/posts", authMiddleware, postHandler.GetUserPosts)
	router.POST("/users/:user_id/follow", authMiddleware, postHandler.Follow)
	router.DELETE("/users/:user_id/follow", authMiddleware, postHandler.Unfollow)
	router.GET("/users/:user_id/follow/stats", authMiddleware, postHandler.GetFollowStats)

	router.GET("/ws/sessions/:session_id", sessionWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, auditEmitter, getEnv("DEBUG_ROUTES", "false") == "true")

	interval := time.Duration(envInt("SCHEDULER_INTERVAL", 60)) * time.Second
	go scheduler.New(sessionRepo, interval).Run(ctx)

	port := getEnv("PORT", "8086")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, val, fallback)
		return fallback
	}
	return parsed
}
