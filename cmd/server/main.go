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

	"admin-console/config"
	"admin-console/internal/api"
	"admin-console/internal/audit"
	"admin-console/internal/broker"
	"admin-console/internal/console"
	"admin-console/internal/scanner"
	"admin-console/internal/session"
	"admin-console/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting admin console")

	tp, err := util.InitTracer("admin-console", cfg.Observ.JaegerEndpoint)
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

	auditStore, err := audit.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer auditStore.Close()
	log.Println("Database connected")

	sessions, err := session.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sessions.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAudit)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	auditPublisher := broker.NewAuditPublisher(producer)

	engine := scanner.NewEngine(func() (scanner.Scanner, error) {
		return scanner.NewTCPScanner(cfg.Scanner.ListenAddr), nil
	})

	manager := console.NewManager(console.Deps{
		Cfg:      cfg,
		Sessions: sessions,
		Audit:    auditPublisher,
		Engine:   engine,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	go manager.Run(workerCtx)

	auditConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAudit, cfg.Kafka.ConsumerGroup)
	auditWorker := audit.NewWorker(auditConsumer, auditStore)
	go func() {
		if err := auditWorker.Start(workerCtx); err != nil {
			log.Printf("Audit worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(manager, sessions, auditStore)
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
	auditWorker.Stop()

	if err := engine.Stop(); err != nil {
		log.Printf("Error stopping scanner: %v", err)
	}

	log.Println("Server exited")
}
