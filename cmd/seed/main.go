// Package main provides a tool to seed the database with demo profiles.
//
// Usage:
//
//	DATA_PATH=~/mansion go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
	"github.com/mansionapp/mansion-server/internal/util"
)

type demoProfile struct {
	name        string
	description string
	featured    bool
	categories  []string
}

var demoProfiles = []demoProfile{
	{
		name:        "Valentina",
		description: "Beach and studio sets.",
		featured:    true,
		categories:  []string{"Latina", "Bikini"},
	},
	{
		name:        "Amara",
		description: "Editorial and lifestyle shoots.",
		categories:  []string{"Ebony", "Lingerie"},
	},
	{
		name:        "Mei",
		description: "Portrait collections.",
		categories:  []string{"Asian", "Slim"},
	},
	{
		name:        "Sofia",
		description: "Swimwear galleries.",
		featured:    true,
		categories:  []string{"Latina", "Thick"},
	},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "./data"
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data path: %v", err)
	}

	dbPath := filepath.Join(dataPath, "mansion.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, slog.Default())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	categories, err := s.ListCategories(ctx)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	bySlug := make(map[string]int64, len(categories))
	for _, c := range categories {
		bySlug[c.Slug] = c.ID
	}

	for _, demo := range demoProfiles {
		profile := &domain.Profile{
			Name:        demo.name,
			Description: demo.description,
			Featured:    demo.featured,
		}
		if err := s.CreateProfile(ctx, profile); err != nil {
			log.Fatalf("Failed to create profile %s: %v", demo.name, err)
		}

		var categoryIDs []int64
		for _, name := range demo.categories {
			if id, ok := bySlug[util.Slugify(name)]; ok {
				categoryIDs = append(categoryIDs, id)
			}
		}
		if err := s.SetProfileCategories(ctx, profile.ID, categoryIDs); err != nil {
			log.Fatalf("Failed to tag profile %s: %v", demo.name, err)
		}

		fmt.Printf("Created profile %q (id=%d) with %d categories\n", profile.Name, profile.ID, len(categoryIDs))
	}

	fmt.Println("Done.")
}
