package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	goredis "github.com/redis/go-redis/v9"

	redisStore "jobrelay/internal/adapter/redis"
	"jobrelay/internal/adapter/sqlite"
	"jobrelay/internal/cli"
	"jobrelay/internal/config"
	"jobrelay/internal/domain"
	"jobrelay/internal/enqueue"
	"jobrelay/internal/queue"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var store cli.Store
	switch cfg.Store.Backend {
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Store.RedisAddr})
		defer rdb.Close()
		store = redisStore.New(rdb)
	default:
		repo, err := sqlite.New(cfg.Store.DBPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer repo.Close()
		store = repo
	}

	var publisher domain.Publisher
	var local *queue.LocalPublisher
	if cfg.Queue.Local {
		local = queue.NewLocalPublisher(cfg.Queue.SigningKey)
		publisher = local
	} else {
		publisher = queue.NewClient(cfg.Queue.ProviderURL, cfg.Queue.Token)
	}
	enq := enqueue.New(store, publisher, cfg)

	root := cli.NewRootCmd(cli.Deps{Store: store, Enqueuer: enq})
	root.SetArgs(flag.Args())
	err = root.Execute()
	if local != nil {
		local.Wait()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
