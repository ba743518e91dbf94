package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository/sqlstore"
)

func TestBookIngestAndContent(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	svc := NewBookService(
		sqlstore.NewBookRepository(d),
		sqlstore.NewGroupRepository(d),
		sqlstore.NewPhraseRepository(d),
		newTextStore(t, dir),
	)

	result, err := svc.Ingest(ctx, " Genesis ", "Torah", genesisText)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.NumChapters != 2 {
		t.Errorf("NumChapters = %d, want 2", result.NumChapters)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %s", result.Warning)
	}

	// Title and division are lowercased at the boundary.
	book, err := svc.ByTitle(ctx, "GENESIS")
	if err != nil {
		t.Fatalf("by title: %v", err)
	}
	if book.Title != "genesis" || book.Division != "torah" {
		t.Errorf("book = %+v", book)
	}

	content, err := svc.Content(ctx, "Genesis")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if content != genesisText {
		t.Errorf("content does not round-trip")
	}
	if _, err := os.Stat(filepath.Join(dir, "genesis.txt")); err != nil {
		t.Errorf("raw text file: %v", err)
	}

	if _, err := svc.Ingest(ctx, "genesis", "torah", exodusText); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate ingest error = %v, want ErrConflict", err)
	}
}

func TestBookIngestValidation(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	svc := newTestBookService(t, d)

	if _, err := svc.Ingest(ctx, "", "torah", genesisText); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("empty title error = %v, want ErrInvalid", err)
	}
	if _, err := svc.Ingest(ctx, "genesis", "", genesisText); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("empty division error = %v, want ErrInvalid", err)
	}
	if _, err := svc.Ingest(ctx, "genesis", "torah", "  \n "); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("empty text error = %v, want ErrInvalid", err)
	}
	if _, err := svc.Ingest(ctx, "genesis", "torah", "no markers here"); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("unparseable text error = %v, want ErrInvalid", err)
	}

	// Nothing half-ingested survives a validation failure.
	names, err := svc.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("books after failed ingests: %v", names)
	}
}

func TestBookCountsAndStats(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	svc := newTestBookService(t, d)
	ingestFixture(t, d, "genesis", genesisText)
	ingestFixture(t, d, "exodus", exodusText)

	n, err := svc.NumChapters(ctx, "genesis")
	if err != nil {
		t.Fatalf("num chapters: %v", err)
	}
	if n != 2 {
		t.Errorf("NumChapters = %d, want 2", n)
	}

	n, err = svc.NumWordsInVerse(ctx, "genesis", 1, 1)
	if err != nil {
		t.Fatalf("num words: %v", err)
	}
	if n != 10 {
		t.Errorf("NumWordsInVerse = %d, want 10", n)
	}
	if _, err := svc.NumWordsInVerse(ctx, "genesis", 1, 99); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing verse error = %v, want ErrNotFound", err)
	}

	names, err := svc.Names(ctx)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"exodus", "genesis"}) {
		t.Errorf("names = %v", names)
	}

	corpus, err := svc.Statistics(ctx, "")
	if err != nil {
		t.Fatalf("corpus stats: %v", err)
	}
	genesis, err := svc.Statistics(ctx, "genesis")
	if err != nil {
		t.Fatalf("genesis stats: %v", err)
	}
	exodus, err := svc.Statistics(ctx, "exodus")
	if err != nil {
		t.Fatalf("exodus stats: %v", err)
	}
	if corpus.TotalWords != genesis.TotalWords+exodus.TotalWords {
		t.Errorf("corpus TotalWords = %d, want %d",
			corpus.TotalWords, genesis.TotalWords+exodus.TotalWords)
	}
	if corpus.NumVerses != genesis.NumVerses+exodus.NumVerses {
		t.Errorf("corpus NumVerses = %d", corpus.NumVerses)
	}
}

func TestGeneralStats(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	svc := newTestBookService(t, d)
	ingestFixture(t, d, "genesis", genesisText)

	groups := NewGroupService(sqlstore.NewGroupRepository(d), sqlstore.NewWordRepository(d))
	if _, err := groups.Create(ctx, "divine"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	phrases := NewPhraseService(sqlstore.NewPhraseRepository(d))
	if _, err := phrases.Add(ctx, "the beginning"); err != nil {
		t.Fatalf("add phrase: %v", err)
	}

	stats, err := svc.GeneralStats(ctx)
	if err != nil {
		t.Fatalf("general stats: %v", err)
	}
	want := &models.GeneralStats{TotalBooks: 1, TotalGroups: 1, TotalPhrases: 1}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBookDeleteRemovesFile(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	svc := NewBookService(
		sqlstore.NewBookRepository(d),
		sqlstore.NewGroupRepository(d),
		sqlstore.NewPhraseRepository(d),
		newTextStore(t, dir),
	)
	if _, err := svc.Ingest(ctx, "genesis", "torah", genesisText); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if err := svc.Delete(ctx, "Genesis"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "genesis.txt")); !os.IsNotExist(err) {
		t.Errorf("raw text file survives deletion: %v", err)
	}
	if _, err := svc.ByTitle(ctx, "genesis"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("by title after delete error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Content(ctx, "genesis"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("content after delete error = %v, want ErrNotFound", err)
	}
}
