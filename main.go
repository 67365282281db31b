package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"saleslens/internal/config"
	"saleslens/internal/store"
	"saleslens/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", cfg.Store.Path, err)
	}
	defer st.Close()

	app := ui.NewApp(cfg, st)

	log.Printf("Starting SalesLens server on port %s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, app.Router()))
}
