package main

import (
	"context"
	"flag"
	"log"

	"bethel-social/internal/config"
	"bethel-social/internal/database"
	"bethel-social/internal/facebook"
	"bethel-social/internal/media"
	"bethel-social/internal/services"

	"github.com/joho/godotenv"
)

// One-shot backfill runner: walks the page feed's cursor chain from the
// fixed lower bound and upserts everything it finds.
func main() {
	// Command line flags
	incremental := flag.Bool("incremental", false, "Run a single-page incremental sync instead of a full backfill")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Image rehosting degrades to original URLs without a service URL
	var rehoster media.Rehoster = media.NoopRehoster{}
	if cfg.ImageServiceURL != "" {
		rehoster = media.NewHTTPRehoster(cfg.ImageServiceURL)
	}

	syncService := services.NewFacebookSyncService(database.DB, cfg, facebook.NewClient(""), rehoster, nil)

	opts := services.SyncOptions{Backfill: !*incremental}
	log.Printf("🔄 Starting Facebook sync (backfill=%v)...", opts.Backfill)

	if err := syncService.Sync(context.Background(), opts); err != nil {
		log.Fatalf("❌ Sync failed: %v", err)
	}

	log.Println("✅ Sync complete")
}
