// Reseeds the quest catalog from the starter set.
//
// Seeding also happens automatically on startup when the quests table is
// empty. This script exists for development resets: it wipes the catalog and
// writes the starter quests again.
//
// Usage: go run scripts/seed_catalog.go
package main

import (
	"log"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/pkg/database"
	"skilljumper_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := db.Unscoped().Where("1 = 1").Delete(&model.Quest{}).Error; err != nil {
		log.Fatalf("failed to clear catalog: %v", err)
	}

	for _, q := range database.StarterQuests() {
		if err := db.Create(q).Error; err != nil {
			log.Fatalf("failed to seed quest %s: %v", q.ID, err)
		}
	}
	log.Printf("seeded %d starter quests", len(database.StarterQuests()))
}
