package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"craft_marketplace_service/internal/api/handlers"
	"craft_marketplace_service/internal/api/router"
	chatapp "craft_marketplace_service/internal/chat/app"
	chatrepo "craft_marketplace_service/internal/chat/repository"
	connapp "craft_marketplace_service/internal/connection/app"
	connrepo "craft_marketplace_service/internal/connection/repository"
	"craft_marketplace_service/pkg/config"
	"craft_marketplace_service/pkg/database"
	"craft_marketplace_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MarketplaceService, config.EnvConfig.MarketplaceServiceLogPath)
	cfg := config.LoadConfig[config.Marketplace](config.EnvConfig.MarketplaceService, config.EnvConfig.MarketplaceServiceYAMLPath)

	ctx := context.Background()
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
		RetryCount:    cfg.MinIO.RetryCount,
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	roomRepo := chatrepo.NewMongoRoomRepository(mongo.Database)
	msgRepo := chatrepo.NewMongoMessageRepository(mongo.Database)
	connectionRepo := connrepo.NewMongoConnectionRepository(mongo.Database)
	pubSub := chatrepo.NewRedisPubSub(redisClient)

	roomUC := chatapp.NewRoomUseCase(roomRepo, msgRepo)
	messageUC := chatapp.NewMessageUseCase(roomRepo, msgRepo, pubSub)
	uploadUC := chatapp.NewUploadUseCase(minioClient)
	connectionUC := connapp.NewConnectionUseCase(connectionRepo, roomRepo, msgRepo, cfg.RequiredMessageCount)

	r := fiber.New(fiber.Config{
		BodyLimit: chatapp.MaxUploadSize + 1<<20,
	})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MarketplaceServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		handlers.NewChatHandler(roomUC, messageUC, uploadUC),
		handlers.NewConnectionHandler(connectionUC),
		chatapp.NewChatWebsocketHandler(messageUC),
	)

	port := ":" + cfg.Port
	log.Printf("Marketplace Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
