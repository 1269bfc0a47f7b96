package bootstrap

import (
	"log"
	"time"

	"voice-intake-be/internal/config"
	"voice-intake-be/internal/controller"
	"voice-intake-be/internal/conversation"
	"voice-intake-be/internal/dialogue"
	"voice-intake-be/internal/gateway"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/internal/pkg/mailer"
	"voice-intake-be/internal/repository/implementation"
	"voice-intake-be/internal/repository/memory"
	"voice-intake-be/internal/service"
	"voice-intake-be/internal/sms"
	"voice-intake-be/pkg/llm/factory"

	pktNats "voice-intake-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CallLogController controller.CallLogController

	// Voice gateway (Exposed for route registration and drain)
	VoiceHandler *gateway.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger  logger.ILogger
	NatsPub *pktNats.Publisher

	// Exposed for the health endpoint's reachability check
	DB *gorm.DB
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Per-frame call logging goes to its own file so live calls do not
	// drown the main log.
	voiceLogger := logger.NewIsolatedLogger(cfg.App.VoiceLogFilePath)

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
		)
	} else {
		emailService = mailer.NopEmailService{}
		log.Printf("[WARN] SMTP not configured, office email alerts disabled")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	var redisClient *redis.Client
	if cfg.App.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid REDIS_URL, cross-instance call claims disabled: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
		}
	}

	// 4. Repositories & Caches
	sessionRepo := implementation.NewCallSessionRepository(db)
	tenantRepo := implementation.NewTenantRepository(db)
	customerRepo := implementation.NewCustomerRepository(db)
	propertyRepo := implementation.NewPropertyRepository(db)
	jobRepo := implementation.NewJobRepository(db)
	leadRepo := implementation.NewLeadRepository(db)

	liveCalls := memory.NewLiveCallCache()
	tenantCache := memory.NewTenantCache()

	// 5. Dialogue Policy
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	policy := dialogue.NewLLMPolicy(
		llmProvider,
		time.Duration(cfg.Voice.PolicyTimeoutSeconds)*time.Second,
		cfg.Voice.HistoryTurns,
		voiceLogger,
	)

	// 6. Services
	var smsSender sms.Sender
	if cfg.Twilio.AccountSID != "" {
		smsSender, err = sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, sysLogger)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize Twilio: %v", err)
		}
	} else {
		smsSender = sms.NewNopSender(sysLogger)
		log.Printf("[WARN] Twilio not configured, confirmation SMS disabled")
	}

	recordsService := service.NewRecordsService(customerRepo, propertyRepo, leadRepo, sysLogger)
	bookingService := service.NewBookingService(recordsService, jobRepo, smsSender, sysLogger)
	publisherService := service.NewPublisherService(cfg.App.CallEventTopic, pubSub, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.CallEventTopic,
		natsPub,
		emailService,
		sessionRepo,
		tenantRepo,
		sysLogger,
	)
	callLogService := service.NewCallLogService(sessionRepo, leadRepo)

	// 7. Conversation Engine & Gateway
	engine := conversation.NewEngine(
		policy,
		sessionRepo,
		liveCalls,
		bookingService,
		recordsService,
		publisherService,
		voiceLogger,
	)

	registry := gateway.NewCallRegistry(redisClient)
	voiceHandler := gateway.NewHandler(engine, tenantRepo, tenantCache, registry, voiceLogger)

	// 8. Controllers
	callLogController := controller.NewCallLogController(callLogService)

	return &Container{
		CallLogController: callLogController,
		VoiceHandler:      voiceHandler,
		ConsumerService:   consumerService,
		Logger:            sysLogger,
		NatsPub:           natsPub,
		DB:                db,
	}
}
