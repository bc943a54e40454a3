package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpAdapter "jobrelay/internal/adapter/http"
	redisStore "jobrelay/internal/adapter/redis"
	"jobrelay/internal/adapter/sqlite"
	"jobrelay/internal/config"
	"jobrelay/internal/domain"
	"jobrelay/internal/enqueue"
	"jobrelay/internal/queue"
	"jobrelay/internal/worker"
)

// logNotifier logs welcome email sends instead of talking to a mail
// provider. Swap in a real Notifier for production.
type logNotifier struct{}

func (logNotifier) SendWelcome(ctx context.Context, userID string) error {
	log.Printf("notify: welcome email sent to user %s", userID)
	return nil
}

// echoAgent is a stand-in AgentClient that echoes the request back.
type echoAgent struct{}

func (echoAgent) Collaborate(ctx context.Context, req domain.AgentRequestPayload) (string, error) {
	return fmt.Sprintf("agent %s received: %s", req.Agent, req.Message), nil
}

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("starting jobrelay on port %d", cfg.Server.Port)
	log.Printf("store backend: %s", cfg.Store.Backend)

	var store domain.JobStore
	switch cfg.Store.Backend {
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Store.RedisAddr})
		defer rdb.Close()
		store = redisStore.New(rdb)
	default:
		repo, err := sqlite.New(cfg.Store.DBPath)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		defer repo.Close()
		store = repo
		log.Printf("database: %s", cfg.Store.DBPath)
	}

	var publisher domain.Publisher
	if cfg.Queue.Local {
		log.Printf("queue: local delivery mode")
		publisher = queue.NewLocalPublisher(cfg.Queue.SigningKey)
	} else {
		publisher = queue.NewClient(cfg.Queue.ProviderURL, cfg.Queue.Token)
	}

	registry := worker.NewRegistry()
	registry.Register(domain.KindOnboarding, worker.NewOnboardingHandler(logNotifier{}))
	registry.Register(domain.KindAgentRequest, worker.NewAgentHandler(echoAgent{}))

	enq := enqueue.New(store, publisher, cfg)
	proc := worker.NewProcessor(store, registry)
	verifier := queue.NewVerifier(cfg.Queue.SigningKey, cfg.Queue.NextSigningKey)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := httpAdapter.NewServer(enq, proc, store, verifier, cfg.CallbackURL(), addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	sig := <-sigCh
	log.Printf("received signal %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
