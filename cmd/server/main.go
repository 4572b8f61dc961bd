package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/perchsocial/perch/internal/api"
	"github.com/perchsocial/perch/internal/api/controller"
	"github.com/perchsocial/perch/internal/api/middleware"
	"github.com/perchsocial/perch/internal/config"
	"github.com/perchsocial/perch/internal/infrastructure/database"
	"github.com/perchsocial/perch/internal/infrastructure/imagestore"
	"github.com/perchsocial/perch/internal/repository"
	"github.com/perchsocial/perch/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Optional .env for local development; real deployments use the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()

	// Infra
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("connecting to mongo: %v", err)
	}
	defer db.Close(ctx)
	slog.Info("connected to mongo", "database", cfg.Mongo.Database)

	images, err := imagestore.NewS3Store(ctx, cfg.Images)
	if err != nil {
		log.Fatalf("initialising image store: %v", err)
	}

	// Layer wiring
	userRepo := repository.NewUserRepo(db)
	notifRepo := repository.NewNotificationRepo(db)

	authSvc := service.NewAuthService(userRepo, cfg.Session)
	userSvc := service.NewUserService(userRepo, images)
	notifSvc := service.NewNotificationService(notifRepo)

	authCtrl := controller.NewAuthController(authSvc, cfg.IsProduction())
	userCtrl := controller.NewUserController(userSvc)
	notifCtrl := controller.NewNotificationController(notifSvc)

	// Server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Cors())
	api.RegisterRoutes(r, cfg.Session.Secret, authCtrl, userCtrl, notifCtrl)

	slog.Info("server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
	if err := r.Run(cfg.Server.Port); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
