package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mirrorapi/internal/rest"
)

func main() {
	var (
		host         = flag.String("host", "0.0.0.0", "interface to bind")
		port         = flag.Int("port", 5000, "port to listen on")
		shutdownSecs = flag.Int("shutdown-secs", 5, "graceful shutdown timeout in seconds")
	)
	flag.Parse()

	rh := rest.NewRequestHandler(*host, *port)
	srv := rest.NewServer(rh, rest.ServerOptions{
		Addr:            fmt.Sprintf("%s:%d", *host, *port),
		ShutdownTimeout: time.Duration(*shutdownSecs) * time.Second,
	})

	srv.Start()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signals
	log.Printf("(mirror-api) Received signal %v, shutting down", sig)

	if err := srv.Stop(context.Background()); err != nil {
		log.Println("(mirror-api) Graceful shutdown error:", err)
	}
	log.Println("(mirror-api) Server stopped")
}
