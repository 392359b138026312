package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"bethel-social/internal/auth"
	"bethel-social/internal/config"

	"github.com/joho/godotenv"
)

// Issues a signed admin token for the manual sync triggers.
func main() {
	// Command line flags
	subject := flag.String("subject", "admin", "Subject claim for the issued token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
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

	verifier := auth.NewTokenVerifier(cfg.JWTSecret)
	token, err := verifier.IssueToken(*subject, *ttl)
	if err != nil {
		log.Fatal("Failed to issue token:", err)
	}

	fmt.Println(token)
}
