package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/clinic-events-processor/internal/api"
	"github.com/ignite/clinic-events-processor/internal/config"
	"github.com/ignite/clinic-events-processor/internal/notify"
	"github.com/ignite/clinic-events-processor/internal/progress"
	"github.com/ignite/clinic-events-processor/internal/storage"
	"github.com/ignite/clinic-events-processor/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// connectRedis dials Redis from REDIS_URL (or REDIS_ADDR) and returns nil
// when Redis is not configured or unreachable; progress tracking degrades
// to disabled in that case.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		log.Println("[Redis] not configured — job progress tracking disabled")
		return nil
	}

	opts, err := redis.ParseURL(addr)
	var client *redis.Client
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: addr})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("[Redis] connection failed (%s): %v — job progress tracking disabled", addr, err)
		client.Close()
		return nil
	}

	log.Printf("[Redis] connected: %s", addr)
	return client
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Clinic Events Processor (cmd/server/main.go)              ║")
	log.Println("║  Streaming CSV analytics with S3 uploads + Slack alerts    ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 3000
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage backend
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if cfg.Storage.Type == "s3" {
		log.Printf("[Storage] S3 backend ready (bucket: %s, region: %s)", cfg.Storage.S3Bucket, cfg.Storage.S3Region)
	} else {
		log.Printf("[Storage] local backend ready (dir: %s)", cfg.Storage.LocalDir)
	}

	// Redis-backed job progress tracking (optional)
	redisClient := connectRedis(ctx, cfg.Redis.Addr)
	tracker := progress.NewTracker(redisClient)

	// Slack notifications (no-op when webhook is unset)
	notifier := notify.NewClient(cfg.Slack)
	if cfg.Slack.WebhookURL != "" {
		log.Println("[Slack] webhook notifications enabled")
	} else {
		log.Println("[Slack] webhook not configured — notifications disabled")
	}

	proc := worker.NewProcessor(store, notifier, tracker, cfg.Processing.ProgressInterval())

	handlers := api.NewHandlers(store, proc, tracker, cfg.Processing.MaxFileSize())
	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Server stopped")
}
