package main

import (
	"log"

	"github.com/joho/godotenv"

	"statlab/internal/config"
	"statlab/internal/container"
	"statlab/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	app, err := ui.NewApp(c.Analysis, c.Logger)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting statlab UI on http://localhost:%s", cfg.Server.UIPort)
	log.Fatal(app.Start(cfg.Server.UIPort))
}
