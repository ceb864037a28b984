// Command seed bootstraps a database with a school, a superuser account
// and, optionally, a demo class roster so the API is usable immediately
// after a fresh deploy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/repository"
	"github.com/jtech-innovations/report-card-api/pkg/config"
	"github.com/jtech-innovations/report-card-api/pkg/database"
)

func main() {
	var (
		schoolCode string
		schoolName string
		username   string
		email      string
		password   string
		demo       bool
	)

	flag.StringVar(&schoolCode, "school-code", "MHPS", "School code to register")
	flag.StringVar(&schoolName, "school-name", "Morning Star Preparatory", "School display name")
	flag.StringVar(&username, "username", "admin", "Superuser username")
	flag.StringVar(&email, "email", "admin@example.com", "Superuser email")
	flag.StringVar(&password, "password", "", "Superuser password (required)")
	flag.BoolVar(&demo, "demo", false, "Also seed a demo class with a small roster")
	flag.Parse()

	if password == "" {
		log.Fatal("a -password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx,
		`INSERT INTO schools (code, name) VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`,
		schoolCode, schoolName); err != nil {
		log.Fatalf("failed to seed school: %v", err)
	}
	fmt.Printf("school %s (%s) registered\n", schoolCode, schoolName)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	res, err := db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, full_name, role, school_code, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8, $8)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), username, email, string(hash), "System Administrator",
		models.RoleSuperuser, schoolCode, now)
	if err != nil {
		log.Fatalf("failed to seed superuser: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		fmt.Printf("user %s already exists, left untouched\n", username)
	} else {
		fmt.Printf("superuser %s created\n", username)
	}

	if !demo {
		return
	}
	if err := seedDemoRoster(ctx, db, schoolCode); err != nil {
		log.Fatalf("failed to seed demo roster: %v", err)
	}
	fmt.Println("demo class seeded")
}

func seedDemoRoster(ctx context.Context, db *sqlx.DB, schoolCode string) error {
	classes := repository.NewClassRepository(db)
	students := repository.NewStudentRepository(db)

	class := &models.Class{
		SchoolCode:   schoolCode,
		Name:         "Primary 5A",
		Level:        "Primary 5",
		AcademicYear: fmt.Sprintf("%d/%d", time.Now().Year(), time.Now().Year()+1),
	}
	if err := classes.Create(ctx, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	roster := []struct {
		admission, first, last, gender string
	}{
		{"ADM-001", "Ama", "Mensah", "female"},
		{"ADM-002", "Kofi", "Boateng", "male"},
		{"ADM-003", "Efua", "Asante", "female"},
	}
	for _, entry := range roster {
		student := &models.Student{
			SchoolCode:  schoolCode,
			AdmissionNo: entry.admission,
			FirstName:   entry.first,
			LastName:    entry.last,
			Gender:      entry.gender,
			ClassID:     &class.ID,
			Active:      true,
		}
		if err := students.Create(ctx, student); err != nil {
			return fmt.Errorf("create student %s: %w", entry.admission, err)
		}
	}
	return nil
}
