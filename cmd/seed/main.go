// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the demo institution (demo-academy) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"campus-control-plane/backend/internal/config"
	"campus-control-plane/backend/internal/db"
	orgrepo "campus-control-plane/backend/internal/organization/repository"
	orgservice "campus-control-plane/backend/internal/organization/service"
	"campus-control-plane/backend/internal/security"
	userrepo "campus-control-plane/backend/internal/user/repository"
)

const (
	demoOrgName   = "Demo Academy"
	demoOrgSlug   = "demo-academy"
	demoAdminUser = "admin"
	demoAdminMail = "admin@demo-academy.edu"
	demoPassword  = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	orgs := orgrepo.NewPostgresRepository(conn)

	existing, err := orgs.GetBySlug(ctx, demoOrgSlug)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", demoOrgSlug)
		os.Exit(0)
	}

	registrar := orgservice.NewRegistrar(orgs, userrepo.NewPostgresRepository(conn), security.NewHasher(cfg.BcryptCost))
	res, err := registrar.Register(ctx, demoOrgName, demoOrgSlug, demoAdminUser, demoAdminMail, demoPassword)
	if err != nil {
		log.Fatalf("seed register: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Institution: %s (slug %s)\n", res.Org.Name, res.Org.Slug)
	fmt.Printf("Admin login: %s / %s\n", demoAdminUser, demoPassword)
}
