package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"deepscout/pkg/clients"
	"deepscout/pkg/config"
	"deepscout/pkg/generate"
	"deepscout/pkg/search"
	"deepscout/pkg/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	llm, err := clients.NewModel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize language model: %v", err)
	}

	// One client set shared by all job workers so the per-provider
	// concurrency limits hold process-wide.
	gen := generate.NewClient(llm, cfg)
	searcher := search.NewClient(cfg)

	svc := server.NewService(gen, searcher)
	h := server.NewHandler(svc)

	// Web Server Setup
	r := gin.Default()

	// CORS Setup
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Allow all for dev
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	h.RegisterRoutes(r)

	fmt.Printf("Server starting on port %s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
