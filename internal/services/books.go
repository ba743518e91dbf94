package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/parser"
	"github.com/bible-concord-api/internal/repository"
	"github.com/bible-concord-api/internal/textstore"
)

// BookService handles book ingestion, lookup, statistics and deletion.
type BookService struct {
	books   repository.BookRepository
	groups  repository.GroupRepository
	phrases repository.PhraseRepository
	texts   *textstore.Store
}

// NewBookService creates a new book service.
func NewBookService(
	books repository.BookRepository,
	groups repository.GroupRepository,
	phrases repository.PhraseRepository,
	texts *textstore.Store,
) *BookService {
	return &BookService{
		books:   books,
		groups:  groups,
		phrases: phrases,
		texts:   texts,
	}
}

// Ingest parses the raw text and persists the book, its chapters,
// dictionary words and occurrences in one transaction, then writes the
// raw text to the flat-file store. A file write failure after the
// index transaction committed is reported as a warning, not a failure:
// the book is searchable but context lookups need a re-ingest.
func (s *BookService) Ingest(ctx context.Context, title, division, rawText string) (*models.IngestResult, error) {
	title = strings.ToLower(strings.TrimSpace(title))
	division = strings.ToLower(strings.TrimSpace(division))
	if title == "" || division == "" {
		return nil, fmt.Errorf("book name and division are required: %w", models.ErrInvalid)
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("book text is empty: %w", models.ErrInvalid)
	}

	chapters, err := parser.Parse(rawText)
	if err != nil {
		return nil, fmt.Errorf("parse book %s: %v: %w", title, err, models.ErrInvalid)
	}

	book := &models.ParsedBook{
		Title:    title,
		Division: division,
		FilePath: s.texts.Path(title),
		FileSize: int64(len(rawText)),
		Chapters: chapters,
	}
	if _, err := s.books.Ingest(ctx, book); err != nil {
		return nil, err
	}

	result := &models.IngestResult{NumChapters: len(chapters)}
	if err := s.texts.Write(title, rawText); err != nil {
		// Post-commit inconsistency: the book is indexed but its raw
		// text is missing. Surfaced to the caller, never swallowed.
		log.Printf("raw text write failed for book %s: %v", title, err)
		result.Warning = fmt.Sprintf("book %s was indexed but its raw text could not be saved; text context is unavailable until re-ingest", title)
	}
	return result, nil
}

// List returns all ingested books.
func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.books.List(ctx)
}

// Names returns all book titles.
func (s *BookService) Names(ctx context.Context) ([]string, error) {
	return s.books.Titles(ctx)
}

// ByTitle returns one book's metadata.
func (s *BookService) ByTitle(ctx context.Context, title string) (*models.Book, error) {
	return s.books.ByTitle(ctx, strings.ToLower(title))
}

// Content returns the persisted raw text of a book.
func (s *BookService) Content(ctx context.Context, title string) (string, error) {
	text, err := s.texts.Read(strings.ToLower(title))
	if os.IsNotExist(err) {
		return "", fmt.Errorf("book %s: %w", title, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read book %s: %w", title, err)
	}
	return text, nil
}

// NumChapters returns a book's chapter count.
func (s *BookService) NumChapters(ctx context.Context, title string) (int, error) {
	book, err := s.ByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	return book.NumChapters, nil
}

// NumVerses returns the verse count of one chapter.
func (s *BookService) NumVerses(ctx context.Context, title string, chapter int) (int, error) {
	return s.books.NumVerses(ctx, strings.ToLower(title), chapter)
}

// NumWordsInVerse returns the word count of one verse.
func (s *BookService) NumWordsInVerse(ctx context.Context, title string, chapter, verse int) (int, error) {
	n, err := s.books.NumWordsInVerse(ctx, strings.ToLower(title), chapter, verse)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("no words found in chapter %d verse %d: %w", chapter, verse, models.ErrNotFound)
	}
	return n, nil
}

// Statistics aggregates counts for one book, or for the whole corpus
// when title is empty.
func (s *BookService) Statistics(ctx context.Context, title string) (*models.BookStatistics, error) {
	return s.books.Statistics(ctx, strings.ToLower(title))
}

// GeneralStats counts books, groups and phrases.
func (s *BookService) GeneralStats(ctx context.Context) (*models.GeneralStats, error) {
	books, err := s.books.Count(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.groups.Count(ctx)
	if err != nil {
		return nil, err
	}
	phrases, err := s.phrases.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &models.GeneralStats{
		TotalBooks:   books,
		TotalGroups:  groups,
		TotalPhrases: phrases,
	}, nil
}

// Delete removes a book, its index rows (via cascade) and its raw text
// file. Dictionary words stay; other books may reference them.
func (s *BookService) Delete(ctx context.Context, title string) error {
	title = strings.ToLower(title)
	if err := s.books.Delete(ctx, title); err != nil {
		return err
	}
	if err := s.texts.Remove(title); err != nil {
		log.Printf("removing raw text of deleted book %s: %v", title, err)
	}
	return nil
}
