package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/taskflow/taskflow-api/config"
	"github.com/taskflow/taskflow-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@taskflow.dev"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	tasks := []struct {
		title       string
		description string
		status      string
	}{
		{"Set up local environment", "Clone the repo, copy .env.example, run migrations", "COMPLETED"},
		{"Read the onboarding doc", "Covers architecture and conventions", "PENDING"},
		{"Create your first task", "Use POST /api/tasks", "PENDING"},
	}
	for _, t := range tasks {
		if _, err := db.Exec(`
			INSERT INTO tasks (user_id, title, description, status)
			VALUES ($1, $2, $3, $4)
		`, userID, t.title, t.description, t.status); err != nil {
			log.Fatalf("failed to seed task %q: %v", t.title, err)
		}
	}
	fmt.Printf("seeded %d tasks for %s\n", len(tasks), email)
}
