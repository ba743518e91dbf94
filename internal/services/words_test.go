package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository/sqlstore"
)

func newTestWordService(t *testing.T, dir string) (*WordService, *BookService) {
	t.Helper()
	d := openTestDB(t)
	texts := newTextStore(t, dir)
	books := NewBookService(
		sqlstore.NewBookRepository(d),
		sqlstore.NewGroupRepository(d),
		sqlstore.NewPhraseRepository(d),
		texts,
	)
	words := NewWordService(
		sqlstore.NewWordRepository(d),
		sqlstore.NewBookRepository(d),
		texts,
	)
	return words, books
}

func TestFilteredWordsValidation(t *testing.T) {
	svc, _ := newTestWordService(t, t.TempDir())
	ctx := context.Background()

	_, err := svc.FilteredWords(ctx, models.WordQueryRequest{PageIndex: 0, PageSize: 0})
	if !errors.Is(err, models.ErrInvalid) {
		t.Errorf("zero page size error = %v, want ErrInvalid", err)
	}
	_, err = svc.FilteredWords(ctx, models.WordQueryRequest{PageIndex: -1, PageSize: 10})
	if !errors.Is(err, models.ErrInvalid) {
		t.Errorf("negative page index error = %v, want ErrInvalid", err)
	}
	_, err = svc.Occurrences(ctx, "  ", models.WordQueryRequest{PageIndex: 0, PageSize: 10})
	if !errors.Is(err, models.ErrInvalid) {
		t.Errorf("blank word error = %v, want ErrInvalid", err)
	}
}

func TestFilteredWordsPage(t *testing.T) {
	svc, books := newTestWordService(t, t.TempDir())
	ctx := context.Background()
	if _, err := books.Ingest(ctx, "genesis", "torah", genesisText); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	starts := "the"
	page, err := svc.FilteredWords(ctx, models.WordQueryRequest{
		Filters:   models.WordFilters{WordStartsWith: &starts},
		PageIndex: 0,
		PageSize:  2,
	})
	if err != nil {
		t.Fatalf("filtered words: %v", err)
	}
	// Distinct matches are the, there - one page fits both.
	if page.Total != 2 || len(page.Words) != 2 {
		t.Errorf("page = %+v, want 2 of 2", page)
	}
}

func TestVerseContextClamping(t *testing.T) {
	svc, books := newTestWordService(t, t.TempDir())
	ctx := context.Background()
	if _, err := books.Ingest(ctx, "genesis", "torah", genesisText); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// Chapter 1 has three verses, so the window around verse 1 clamps
	// at the chapter start and still extends two verses down.
	text, err := svc.VerseContext(ctx, "Genesis", 1, 1)
	if err != nil {
		t.Fatalf("verse context: %v", err)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("context lines = %q", lines)
	}
	if lines[0] != "[1] In the beginning god created the heaven and the earth" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[2] And") || !strings.HasPrefix(lines[2], "[3] And") {
		t.Errorf("window = %q", lines)
	}

	// A single-verse chapter clamps to exactly one line.
	text, err = svc.VerseContext(ctx, "genesis", 2, 1)
	if err != nil {
		t.Fatalf("verse context: %v", err)
	}
	if text != "[1] Thus the heavens and the earth were finished" {
		t.Errorf("single verse context = %q", text)
	}

	if _, err := svc.VerseContext(ctx, "genesis", 1, 99); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("out-of-range verse error = %v, want ErrNotFound", err)
	}
	if _, err := svc.VerseContext(ctx, "genesis", 9, 1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing chapter error = %v, want ErrNotFound", err)
	}
}

func TestLineContextWindow(t *testing.T) {
	svc, books := newTestWordService(t, t.TempDir())
	ctx := context.Background()
	if _, err := books.Ingest(ctx, "genesis", "torah", genesisText); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	// Line 1 is the chapter marker; the window is clamped at the top.
	text, err := svc.LineContext(ctx, "genesis", 1)
	if err != nil {
		t.Fatalf("line context: %v", err)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 3 || lines[0] != "Genesis.1" {
		t.Errorf("top window = %q", lines)
	}

	text, err = svc.LineContext(ctx, "genesis", 3)
	if err != nil {
		t.Fatalf("line context: %v", err)
	}
	lines = strings.Split(text, "\n")
	if len(lines) != 5 {
		t.Errorf("middle window = %q", lines)
	}
	if lines[2] != "[2] And the earth was without form and void" {
		t.Errorf("target line = %q", lines[2])
	}

	if _, err := svc.LineContext(ctx, "genesis", 0); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("line 0 error = %v, want ErrNotFound", err)
	}
	if _, err := svc.LineContext(ctx, "genesis", 999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("line 999 error = %v, want ErrNotFound", err)
	}
	if _, err := svc.LineContext(ctx, "never-ingested", 1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing book error = %v, want ErrNotFound", err)
	}
}
