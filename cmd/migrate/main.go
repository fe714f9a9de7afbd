// migrate applies DB migrations from embedded SQL: go run ./cmd/migrate
package main

import (
	"flag"
	"log"
	"os"

	"duka-auth-service/internal/repository/postgres"

	"github.com/joho/godotenv"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("[MIGRATE] No .env file found, relying on system env vars")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := postgres.Migrate(dsn, *direction); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Printf("migrations applied (%s)", *direction)
}
