package wire

import (
	"Holonet/internal/api"
	"Holonet/internal/api/config"
	"Holonet/internal/api/handler"
	"Holonet/internal/job"
	"Holonet/internal/pkg/cron"
	"Holonet/internal/pkg/kafka"
	holomongo "Holonet/internal/pkg/mongo"
	"Holonet/internal/repository"
	"Holonet/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	directRepo := repository.NewDirectConversationRepo(db)
	pinRepo := repository.NewPinRepo(db)
	reactionRepo := repository.NewReactionRepo(db)
	messageRepo := holomongo.NewMessageRepo(mongoDB)
	reportRepo := holomongo.NewReportRepo(mongoDB)

	dispatcher := service.NewDispatcher(service.NewRedisPublisher())
	presenceService := service.NewPresenceService(userRepo, cfg.Presence.TTLSeconds)
	pushService := service.NewPushService(cfg.Push)
	roomService := service.NewRoomService(roomRepo, directRepo, userRepo, messageRepo, dispatcher)
	messageService := service.NewMessageService(
		roomRepo, directRepo, userRepo,
		messageRepo, reportRepo,
		presenceService, pushService, dispatcher,
		cfg.Chat,
	)
	reactionService := service.NewReactionService(reactionRepo, roomRepo, directRepo, messageRepo, dispatcher)
	pinService := service.NewPinService(pinRepo, roomRepo, messageRepo, dispatcher)

	handlers := &api.HandlersGroup{
		RoomHandler:     handler.NewRoomHandler(roomService),
		MessageHandler:  handler.NewMessageHandler(messageService),
		ReactionHandler: handler.NewReactionHandler(reactionService),
		PinHandler:      handler.NewPinHandler(pinService),
		MediaHandler:    handler.NewMediaHandler(roomService),
		WSHandler:       handler.NewWsHandler(roomService, presenceService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, userRepo)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(job.NewPresenceSweepJob(presenceService))

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
