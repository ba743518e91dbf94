package repository

import (
	"context"

	"github.com/bible-concord-api/internal/models"
)

// BookRepository defines operations over books, chapters and the
// occurrence index they own.
type BookRepository interface {
	// Ingest atomically inserts the book, its chapters, any missing
	// dictionary words, and every word occurrence. Returns the new
	// book id, or models.ErrConflict when the title is taken.
	Ingest(ctx context.Context, book *models.ParsedBook) (int64, error)
	List(ctx context.Context) ([]models.Book, error)
	Titles(ctx context.Context) ([]string, error)
	ByTitle(ctx context.Context, title string) (*models.Book, error)
	// Delete removes the book; chapters and occurrences cascade.
	Delete(ctx context.Context, title string) error
	NumVerses(ctx context.Context, title string, chapter int) (int, error)
	NumWordsInVerse(ctx context.Context, title string, chapter, verse int) (int, error)
	// Statistics aggregates over one book, or the whole corpus when
	// title is empty.
	Statistics(ctx context.Context, title string) (*models.BookStatistics, error)
	Count(ctx context.Context) (int, error)
}

// WordRepository defines filterable, paginated views over the
// occurrence index and the word dictionary.
type WordRepository interface {
	FilteredWords(ctx context.Context, f models.WordFilters, pageIndex, pageSize int) ([]string, int, error)
	Occurrences(ctx context.Context, word string, f models.WordFilters, pageIndex, pageSize int) ([]models.Occurrence, int, error)
	// VerseWindow returns the ordered words of every verse of the
	// chapter within [fromVerse, toVerse], keyed by verse number.
	VerseWindow(ctx context.Context, title string, chapter, fromVerse, toVerse int) (map[int][]string, error)
	Exists(ctx context.Context, value string) (bool, error)
}

// GroupRepository defines operations over curated word groups.
type GroupRepository interface {
	Create(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
	AddWord(ctx context.Context, group, word string) error
	Words(ctx context.Context, name string) ([]string, error)
	// OccurrenceIndex returns every member word's occurrence
	// coordinates, keyed by word value.
	OccurrenceIndex(ctx context.Context, name string) (map[string][]models.Occurrence, error)
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int, error)
}

// PhraseRepository defines phrase storage and the occurrence scan the
// phrase locator runs on.
type PhraseRepository interface {
	// Insert persists the phrase and its cached references in one
	// transaction.
	Insert(ctx context.Context, text string, refs []models.Reference) error
	Texts(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, text string) (bool, error)
	References(ctx context.Context, text string) ([]models.Reference, error)
	Delete(ctx context.Context, text string) error
	Count(ctx context.Context) (int, error)
	// VerseOccurrences returns every occurrence of any of the given
	// words, ordered by (book, chapter, verse, position). The phrase
	// locator groups them per verse.
	VerseOccurrences(ctx context.Context, words []string) ([]models.PositionedWord, error)
}
