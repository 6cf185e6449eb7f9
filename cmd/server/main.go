package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketshop/config"
	"ticketshop/internal/api"
	"ticketshop/internal/broker"
	"ticketshop/internal/redisclient"
	"ticketshop/internal/service"
	"ticketshop/internal/store"
	"ticketshop/internal/util"
	"ticketshop/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting ticketshop service")

	tp, err := util.InitTracer("ticketshop", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, catalogue reads go to DB: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	if err := broker.EnsureTopics(cfg.Kafka.Brokers, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor,
		cfg.Kafka.TopicRequests, cfg.Kafka.TopicOutcomes); err != nil {
		log.Printf("Topic provisioning failed (may already exist): %v", err)
	}

	requestProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicRequests)
	defer requestProducer.Close()
	outcomeProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOutcomes)
	defer outcomeProducer.Close()
	log.Println("Kafka producers initialized")

	eventPublisher := broker.NewEventPublisher(requestProducer, outcomeProducer)

	catalogClient := service.NewCatalogClient(db, redisClient)
	travelClient := service.NewTravelClient(cfg.Collaborator.TravelBaseURL,
		time.Duration(cfg.Collaborator.TravelTimeoutSeconds)*time.Second)
	profileClient := service.NewProfileClient(cfg.Collaborator.ProfileBaseURL,
		time.Duration(cfg.Collaborator.ProfileTimeoutSeconds)*time.Second)

	saga := service.NewOrderSaga(db, catalogClient, travelClient, profileClient, eventPublisher)
	payments := service.NewPaymentService(db, eventPublisher, nil)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	outcomeConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOutcomes, cfg.Kafka.OrderGroup)
	orderWorker := worker.NewOrderWorker(outcomeConsumer, saga)
	go func() {
		if err := orderWorker.Start(workerCtx); err != nil {
			log.Printf("Order worker stopped: %v", err)
		}
	}()

	requestConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicRequests, cfg.Kafka.PaymentGroup)
	paymentWorker := worker.NewPaymentWorker(requestConsumer, payments)
	go func() {
		if err := paymentWorker.Start(workerCtx); err != nil {
			log.Printf("Payment worker stopped: %v", err)
		}
	}()

	reconciler := worker.NewReconciler(db,
		time.Duration(cfg.Business.OrderTimeoutSeconds)*time.Second,
		time.Duration(cfg.Business.ReconcileIntervalSeconds)*time.Second)
	go func() {
		if err := reconciler.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Reconciler stopped: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(saga, catalogClient, cfg.Auth.JWTSecret)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	orderWorker.Stop()
	paymentWorker.Stop()

	log.Println("Server exited")
}
