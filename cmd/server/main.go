// cmd/server is the main entrypoint for one RedBlue bank replica.
//
// Every replica in a cluster is started with the full, fixed address
// list and its own index into it. There is no join/leave and no flags:
// a RedBlue cluster's membership never changes after startup.
//
// Example — 3-node cluster, launched as three processes:
//
//	./server 0 localhost:8080 localhost:8081 localhost:8082
//	./server 1 localhost:8080 localhost:8081 localhost:8082
//	./server 2 localhost:8080 localhost:8081 localhost:8082
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"redblue-bank/internal/bank"
	"redblue-bank/internal/clusterconfig"
	"redblue-bank/internal/peer"
	"redblue-bank/internal/replica"
	"redblue-bank/internal/transport"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: server <hex_index> <addr0> <addr1> ...")
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	selfID64, err := strconv.ParseInt(os.Args[1], 16, 64)
	if err != nil {
		usage()
		log.Fatalf("bad hex_index %q: %v", os.Args[1], err)
	}
	addrs := os.Args[2:]

	cfg, err := clusterconfig.New(int(selfID64), addrs)
	if err != nil {
		usage()
		log.Fatal(err)
	}

	// ── Peer links ─────────────────────────────────────────────────────────
	peers := make([]replica.PeerLink, cfg.Size())
	for _, n := range cfg.Peers() {
		peers[n.ID] = peer.New("http://" + n.Address)
	}

	store := bank.New()
	engine := replica.New(replica.Config{ID: cfg.SelfID, Peers: peers}, store)

	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)

	// ── HTTP server ────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(transport.Logger(engine), transport.Recovery(engine))
	transport.NewHandler(engine).Register(router)

	// Health check endpoint — useful for load balancers and readiness probes.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"replica": cfg.SelfID, "status": "ok", "cluster_size": cfg.Size()})
	})

	srv := &http.Server{
		Addr:         cfg.Self().Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// ── Graceful shutdown ──────────────────────────────────────────────────
	go func() {
		log.Printf("replica %d listening on %s (cluster size %d)", cfg.SelfID, cfg.Self().Address, cfg.Size())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down replica", cfg.SelfID)
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
