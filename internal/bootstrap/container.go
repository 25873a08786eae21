package bootstrap

import (
	"context"
	"log"

	"onechart-be/internal/config"
	"onechart-be/internal/controller"
	"onechart-be/internal/handler"
	"onechart-be/internal/pkg/logger"
	"onechart-be/internal/repository/memory"
	"onechart-be/internal/repository/unitofwork"
	"onechart-be/internal/service"
	"onechart-be/internal/websocket"
	"onechart-be/pkg/capture"
	"onechart-be/pkg/events"
	"onechart-be/pkg/jobs"
	"onechart-be/pkg/llm/factory"
	pktNats "onechart-be/pkg/nats"
	"onechart-be/pkg/scribe"
	"onechart-be/pkg/templates"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionChangesTopic = "session_changes"

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	RecordingController controller.IRecordingController
	TaskController      controller.ITaskController
	TemplateController  controller.ITemplateController
	ProfileController   controller.IProfileController

	// Background Services (Exposed for main.go to run)
	ProcessingService service.IProcessingService
	ConsumerService   service.IConsumerService
	RetentionService  service.IRetentionService
	EventAuditService *service.EventAuditService
	JobTracker        *jobs.Tracker

	// WebSockets
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub

	SysLogger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	pubSub  *gochannel.GoChannel
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	// 3. AI
	llmConfig := factory.Config{
		Provider:           cfg.Ai.LLMProvider,
		Model:              cfg.Ai.LLMModel,
		TranscriptionModel: cfg.Ai.TranscriptionModel,
		GeminiAPIKey:       cfg.Ai.GeminiAPIKey,
		GeminiBaseURL:      cfg.Ai.GeminiBaseURL,
		OpenAIAPIKey:       cfg.Ai.OpenAIAPIKey,
		OpenAIBaseURL:      cfg.Ai.OpenAIBaseURL,
		AnthropicAPIKey:    cfg.Ai.AnthropicAPIKey,
		OllamaBaseURL:      cfg.Ai.OllamaBaseURL,
		Timeout:            cfg.Ai.RequestTimeout,
	}
	llmProvider, err := factory.NewLLMProvider(llmConfig)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	mediaProvider, err := factory.NewMediaProvider(llmConfig)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize transcription provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s), transcription: %s", cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.TranscriptionModel)
	gateway := scribe.NewGateway(llmProvider, mediaProvider)

	// 4. In-memory state
	sessionStore := memory.NewSessionListStore(cfg.Sessions.ListTTL)
	templateRepo := memory.NewTemplateRepository(templates.Defaults())
	tracker := jobs.NewTracker(context.Background())
	recorder := capture.NewRecorder(cfg.Sessions.MaxCaptureBytes, 0)

	// 5. Infrastructure
	// NATS
	var eventPublisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/live.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 6. Services
	publisherService := service.NewPublisherService(sessionChangesTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, sessionChangesTopic, wsHub, wsLogger)
	sessionStore.OnChange(service.NewSessionChangeForwarder(publisherService, sysLogger))

	processingService := service.NewProcessingService(uowFactory, sessionStore, templateRepo, gateway, tracker, eventPublisher, sysLogger)
	resumeService := service.NewResumeService(uowFactory, sessionStore, templateRepo, gateway, recorder, tracker, eventPublisher, sysLogger)
	sessionService := service.NewSessionService(uowFactory, sessionStore, templateRepo, gateway, tracker, sysLogger)
	taskService := service.NewTaskService(uowFactory, sessionStore, tracker, sysLogger)
	templateService := service.NewTemplateService(templateRepo)
	profileService := service.NewProfileService(uowFactory)
	retentionService := service.NewRetentionService(uowFactory, sessionStore, tracker, eventPublisher, sysLogger)
	eventAuditService := service.NewEventAuditService(natsSub, sysLogger)

	// 7. Controllers
	secret := cfg.Auth.JwtSecret
	maxUpload := int64(cfg.Sessions.MaxUploadBytes)
	return &Container{
		SessionController:   controller.NewSessionController(sessionService, processingService, secret, maxUpload),
		RecordingController: controller.NewRecordingController(resumeService, sysLogger, secret, maxUpload),
		TaskController:      controller.NewTaskController(taskService, secret),
		TemplateController:  controller.NewTemplateController(templateService, secret),
		ProfileController:   controller.NewProfileController(profileService, secret),

		ProcessingService: processingService,
		ConsumerService:   consumerService,
		RetentionService:  retentionService,
		EventAuditService: eventAuditService,
		JobTracker:        tracker,

		LiveHandler:  handler.NewLiveHandler(wsHub, wsLogger, secret),
		WebSocketHub: wsHub,

		SysLogger: sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		pubSub:  pubSub,
	}
}

// Close stops background jobs and releases broker connections.
func (c *Container) Close(ctx context.Context) {
	if err := c.JobTracker.Shutdown(ctx); err != nil {
		log.Printf("[WARN] Jobs still running at shutdown: %v", err)
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.pubSub.Close()
	_ = c.SysLogger.Sync()
}
