// Command nuke_db drops the whole schema and recreates it empty. Development
// convenience for throwing away a broken local database; refuses to run
// against production.
package main

import (
	"fmt"
	"log"

	"alphaboard/internal/config"
	"alphaboard/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("refusing to nuke a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Nuking database...")
	if err := db.Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public;").Error; err != nil {
		log.Fatalf("failed to nuke schema: %v", err)
	}
	if err := db.Exec("GRANT ALL ON SCHEMA public TO public;").Error; err != nil {
		log.Fatalf("failed to grant schema permissions: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to re-run migrations: %v", err)
	}
	fmt.Println("Database nuked and re-migrated.")
}
