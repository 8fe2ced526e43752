package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/cli"
	"github.com/yug-shah0106/accordo-engine/internal/infrastructure/config"
)

// accordo-daemon keeps a warm engine container running so that external
// channel integrations (mail, chat bridges) can dispatch through it
// without paying the migration and pool startup cost per message.
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoadConfig(*configPath)

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("failed to start engine: %v", err)
	}
	log.Printf("accordo engine ready (database: %s)", cfg.Database.Type)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	if err := app.Close(); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
