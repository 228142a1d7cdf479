package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/df07/go-weekend-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	sceneDir := flag.String("scenes", "scenes", "Directory of .json scene files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Create and start web server
	webServer := server.NewServer(*port, *sceneDir, logger)
	logger.Info("weekend raytracer web server", "port", *port)

	if err := webServer.Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
