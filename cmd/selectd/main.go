// Command selectd serves screen-space point selection over gRPC.
//
// Each request is handed to one of a fixed pool of isolated workers; the
// point buffer moves into the worker and the mask moves back.
//
// Usage:
//
//	go run ./cmd/selectd [flags]
//
// Flags:
//
//	-config   Path to a JSON config (default: built-in defaults)
//	-addr     Listen address, overrides config
//	-workers  Number of workers, overrides config
//	-version  Print version and exit
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/pointselect/internal/config"
	"github.com/banshee-data/pointselect/internal/selection/rpc"
	"github.com/banshee-data/pointselect/internal/selection/worker"
	"github.com/banshee-data/pointselect/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	workers := flag.Int("workers", 0, "Number of selection workers (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("selectd"))
		return
	}

	cfg := config.EmptySelectionConfig()
	if *configPath != "" {
		loaded, err := config.LoadSelectionConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.ListenAddr = addr
	}
	if *workers > 0 {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	log.Printf("Starting %s", version.String("selectd"))
	log.Printf("Configuration: %d workers, queue %d, %d shards (min %d points), timeout %v",
		cfg.GetWorkers(), cfg.GetQueueDepth(), cfg.GetShards(), cfg.GetMinShardPoints(), cfg.GetRequestTimeout())

	pool := worker.NewPool(worker.PoolConfig{
		Workers:    cfg.GetWorkers(),
		QueueDepth: cfg.GetQueueDepth(),
		Worker: worker.Options{
			Shards:        cfg.ShardOptions(),
			SlowThreshold: cfg.GetSlowRequest(),
		},
	})

	server := rpc.NewServer(rpc.Config{
		ListenAddr:      cfg.GetListenAddr(),
		MaxMessageBytes: cfg.GetMaxMessageBytes(),
	}, rpc.NewService(pool, cfg.GetRequestTimeout()))

	if err := server.Start(); err != nil {
		pool.Close()
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("Server ready on %s", server.Addr())

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("Shutting down...")
	server.Stop()
	pool.Close()

	stats := pool.Stats()
	log.Printf("Processed %d requests (%d failed, %d rejected)", stats.Processed, stats.Failed, stats.Rejected)
}
