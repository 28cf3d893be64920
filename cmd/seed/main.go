package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-accounts/config"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

// Seeds the initial admin account so a fresh deployment has someone who can
// reach the dashboard. Idempotent: re-running updates nothing destructive.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	password := envOr("SEED_ADMIN_PASSWORD", "changeme123")
	fullName := envOr("SEED_ADMIN_NAME", "Site Admin")

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, full_name, role, is_active, is_verified)
		VALUES ($1, $2, $3, 'admin', TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE SET role = 'admin', is_active = TRUE, is_verified = TRUE
		RETURNING id
	`, email, hash, fullName).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%d email=%s\n", id, email)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
