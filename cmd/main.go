package main

import (
	"context"
	"fmt"
	"os"
	"time"

	rediscache "github.com/yungbote/skilltrail-backend/internal/clients/redis"
	"github.com/yungbote/skilltrail-backend/internal/data/db"
	"github.com/yungbote/skilltrail-backend/internal/data/repos/learning"
	userrepo "github.com/yungbote/skilltrail-backend/internal/data/repos/user"
	"github.com/yungbote/skilltrail-backend/internal/http/handlers"
	"github.com/yungbote/skilltrail-backend/internal/http/middleware"
	"github.com/yungbote/skilltrail-backend/internal/observability"
	"github.com/yungbote/skilltrail-backend/internal/pkg/envutil"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrail-backend/internal/server"
	"github.com/yungbote/skilltrail-backend/internal/services"
)

const serviceName = "skilltrail-backend"

func main() {
	// Logger
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "")
	if jwtSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	accessTokenTTL := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	refreshTokenTTL := envutil.Int("REFRESH_TOKEN_TTL", 604800)

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: envutil.String("APP_ENV", "development"),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	gdb := postgresService.DB()

	// Repos
	userRepo := userrepo.NewUserRepo(gdb, log)
	userTokenRepo := userrepo.NewUserTokenRepo(gdb, log)
	learningPathRepo := learning.NewLearningPathRepo(gdb, log)
	skillRepo := learning.NewSkillRepo(gdb, log)
	projectRepo := learning.NewProjectRepo(gdb, log)

	// Cache (optional: missing redis degrades to direct reads)
	activePathCache, err := rediscache.NewActivePathCache(log)
	if err != nil {
		log.Warn("active path cache disabled", "error", err)
		activePathCache = nil
	} else {
		defer activePathCache.Close()
	}

	// Services
	authService := services.NewAuthService(
		gdb, log, userRepo, userTokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(gdb, log, userRepo)
	learningPathService := services.NewLearningPathService(
		gdb, log,
		learningPathRepo, skillRepo, projectRepo,
		activePathCache,
		services.LoadPlanDefaults(log),
	)

	// HTTP
	router := server.NewRouter(server.RouterConfig{
		Log:                 log,
		ServiceName:         serviceName,
		AuthMiddleware:      middleware.NewAuthMiddleware(log, authService),
		AuthHandler:         handlers.NewAuthHandler(authService),
		UserHandler:         handlers.NewUserHandler(userService),
		LearningPathHandler: handlers.NewLearningPathHandler(learningPathService),
	})

	port := envutil.String("PORT", "8080")
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
