package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autoserve/config"
	"autoserve/cron"
	"autoserve/database"
	catalogRepo "autoserve/database/repository/catalog"
	requestRepo "autoserve/database/repository/servicerequest"
	"autoserve/handlers"
	"autoserve/middleware"
	"autoserve/routes"
	"autoserve/services/booking"
	"autoserve/services/diagnosis"
	"autoserve/services/estimate"
	"autoserve/services/notification"
	"autoserve/services/tasks"
	"autoserve/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitSessionCache()
	utils.FirebaseInit()

	// Catalog snapshot store. The initial load must succeed; refreshes may
	// fail and keep serving the previous snapshot.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	catalogMongo := catalogRepo.NewMongoCatalogRepo()
	catalogStore, err := catalogRepo.NewStore(loadCtx, catalogMongo, logger)
	cancelLoad()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load catalog snapshot: %v", err)
	}
	refreshCtx, cancelRefresh := context.WithCancel(context.Background())
	defer cancelRefresh()
	catalogStore.StartRefresher(refreshCtx, time.Duration(config.AppConfig.CatalogRefreshMinutes)*time.Minute)

	reqRepo := requestRepo.NewMongoRequestRepo()
	if err := reqRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure service request indexes: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// services.
	sessionStore := diagnosis.NewRedisSessionStore(utils.GetSessionCacheClient(), 30*time.Minute)
	matcher := &diagnosis.LexicalMatcher{
		MinScore:      config.AppConfig.MinMatchScore,
		MaxCandidates: 25,
	}

	var questionGen diagnosis.QuestionGenerator = diagnosis.StaticQuestionGenerator{}
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := diagnosis.NewGeminiQuestionGenerator(key)
		if err != nil {
			logger.Warn("main: Gemini unavailable, using static clarification questions")
		} else {
			questionGen = gemini
		}
	}

	diagnosisService := &diagnosis.DefaultDiagnosisService{
		Catalog:   catalogStore,
		Store:     sessionStore,
		Matcher:   matcher,
		Questions: questionGen,
		Logger:    logger,
		Cfg: diagnosis.Config{
			MaxQuestions: config.AppConfig.MaxClarifyingQuestions,
			TopN:         config.AppConfig.TopNProblems,
			StableTurns:  config.AppConfig.StableTurns,
		},
	}

	aggregator := estimate.NewAggregator(
		catalogStore,
		logger,
		time.Duration(config.AppConfig.EstimatePairTimeoutMs)*time.Millisecond,
		time.Duration(config.AppConfig.EstimateOverallTimeoutMs)*time.Millisecond,
		config.AppConfig.EstimateMaxConcurrent,
	)

	notificationService := notification.FromFirebase(logger)

	// Pending-request reminder queue.
	var reminderScheduler booking.ReminderScheduler
	if config.AppConfig.PendingReminderHours > 0 {
		queueClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		})
		defer queueClient.Close()
		reminderScheduler = tasks.NewScheduler(queueClient)
		cron.InitReminderWorker(reqRepo, notificationService, logger)
	}

	bookingService := &booking.DefaultBookingCoordinator{
		Repo:          reqRepo,
		Estimator:     aggregator,
		Vehicles:      catalogMongo,
		Notifier:      notificationService,
		Reminders:     reminderScheduler,
		ReminderAfter: time.Duration(config.AppConfig.PendingReminderHours) * time.Hour,
		Logger:        logger,
	}

	// handlers.
	diagnosisHandler := handlers.NewDiagnosisHandler(diagnosisService)
	estimateHandler := handlers.NewEstimateHandler(aggregator, diagnosisService, catalogMongo, catalogStore)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	catalogHandler := handlers.NewCatalogHandler(catalogStore)

	handlerBundle := &handlers.HandlerBundle{
		// Diagnosis endpoints.
		StartSessionHandler:   diagnosisHandler.StartSessionHandler,
		AnswerHandler:         diagnosisHandler.AnswerHandler,
		GetSessionHandler:     diagnosisHandler.GetSessionHandler,
		CancelSessionHandler:  diagnosisHandler.CancelSessionHandler,
		MatchProblemsHandler:  diagnosisHandler.MatchProblemsHandler,
		SearchProblemsHandler: catalogHandler.SearchProblemsHandler,

		// Estimate endpoints.
		CompareEstimatesHandler: estimateHandler.CompareHandler,
		SessionEstimatesHandler: estimateHandler.SessionEstimatesHandler,

		// Booking endpoints.
		CreateBookingHandler:        bookingHandler.CreateBookingHandler,
		UpdateServiceRequestHandler: bookingHandler.UpdateServiceRequestHandler,
		GetServiceRequestHandler:    bookingHandler.GetServiceRequestHandler,
		CustomerServicesHandler:     bookingHandler.CustomerServicesHandler,
		DealershipServicesHandler:   bookingHandler.DealershipServicesHandler,

		// Catalog endpoints.
		ListDealershipsHandler:  catalogHandler.ListDealershipsHandler,
		DealershipLabourHandler: catalogHandler.DealershipLabourHandler,
		DealershipPartsHandler:  catalogHandler.DealershipPartsHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetSessionCacheClient()},
		database.MongoClient,
	)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
	logger.Info("main: exited")
}
