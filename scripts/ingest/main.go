// ingest.go
//
// Bulk-loads book text files into the concordance index. Each .txt
// file in the input directory becomes one book; the book title is the
// file name without extension.
//
// Environment variables:
//   DB_DRIVER - "postgres" or "sqlite3"
//   DB_URI    - connection string / database path
//   TEXT_DIR  - directory for persisted raw text (default: ext_disk)
//
// Usage:
//   go run scripts/ingest/main.go -dir ./books -division torah
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bible-concord-api/internal/config"
	"github.com/bible-concord-api/internal/db"
	"github.com/bible-concord-api/internal/repository/sqlstore"
	"github.com/bible-concord-api/internal/services"
	"github.com/bible-concord-api/internal/textstore"
)

func main() {
	dir := flag.String("dir", "", "Directory of .txt book files to ingest")
	division := flag.String("division", "", "Division label applied to every book")
	flag.Parse()

	godotenv.Load()

	if *dir == "" || *division == "" {
		log.Fatal("-dir and -division are required")
	}

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	cfg := config.GetConfig()
	texts, err := textstore.New(cfg.TextDir)
	if err != nil {
		log.Fatalf("Failed to initialize text store: %v", err)
	}

	d := db.Get()
	books := services.NewBookService(
		sqlstore.NewBookRepository(d),
		sqlstore.NewGroupRepository(d),
		sqlstore.NewPhraseRepository(d),
		texts,
	)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *dir, err)
	}

	ingested, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		title := strings.TrimSuffix(entry.Name(), ".txt")
		raw, err := os.ReadFile(filepath.Join(*dir, entry.Name()))
		if err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			failed++
			continue
		}
		result, err := books.Ingest(ctx, title, *division, string(raw))
		if err != nil {
			log.Printf("Failed to ingest %s: %v", title, err)
			failed++
			continue
		}
		if result.Warning != "" {
			log.Printf("Warning for %s: %s", title, result.Warning)
		}
		log.Printf("Ingested %s (%d chapters)", title, result.NumChapters)
		ingested++
	}

	log.Printf("Done: %d ingested, %d failed", ingested, failed)
}
