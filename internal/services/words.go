package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository"
	"github.com/bible-concord-api/internal/textstore"
)

// contextRadius is the number of verses (or raw lines) shown on each
// side of a context target.
const contextRadius = 2

// WordService answers filtered word queries and reconstructs
// surrounding text for display.
type WordService struct {
	words repository.WordRepository
	books repository.BookRepository
	texts *textstore.Store
}

// NewWordService creates a new word service.
func NewWordService(
	words repository.WordRepository,
	books repository.BookRepository,
	texts *textstore.Store,
) *WordService {
	return &WordService{
		words: words,
		books: books,
		texts: texts,
	}
}

// FilteredWords returns one page of distinct word values matching the
// request filters plus the total distinct match count.
func (s *WordService) FilteredWords(ctx context.Context, req models.WordQueryRequest) (*models.WordPage, error) {
	if req.PageSize <= 0 || req.PageIndex < 0 {
		return nil, fmt.Errorf("pageSize must be positive and pageIndex non-negative: %w", models.ErrInvalid)
	}
	words, total, err := s.words.FilteredWords(ctx, req.Filters, req.PageIndex, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &models.WordPage{Words: words, Total: total}, nil
}

// Occurrences returns one page of coordinates where the word appears
// under the request filters.
func (s *WordService) Occurrences(ctx context.Context, word string, req models.WordQueryRequest) (*models.OccurrencePage, error) {
	if strings.TrimSpace(word) == "" {
		return nil, fmt.Errorf("word is required: %w", models.ErrInvalid)
	}
	if req.PageSize <= 0 || req.PageIndex < 0 {
		return nil, fmt.Errorf("pageSize must be positive and pageIndex non-negative: %w", models.ErrInvalid)
	}
	occs, total, err := s.words.Occurrences(ctx, word, req.Filters, req.PageIndex, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &models.OccurrencePage{Occurrences: occs, Total: total}, nil
}

// VerseContext rebuilds a window of verses around the target verse
// from the occurrence index, one verse per line, first word
// capitalized. The window clamps into the chapter's valid verse range.
func (s *WordService) VerseContext(ctx context.Context, title string, chapter, verse int) (string, error) {
	title = strings.ToLower(title)
	lastVerse, err := s.books.NumVerses(ctx, title, chapter)
	if err != nil {
		return "", err
	}
	if verse < 1 || verse > lastVerse {
		return "", fmt.Errorf("verse %d of %s chapter %d: %w", verse, title, chapter, models.ErrNotFound)
	}

	start := verse - contextRadius
	if start < 1 {
		start = 1
	}
	end := verse + contextRadius
	if end > lastVerse {
		end = lastVerse
	}

	verses, err := s.words.VerseWindow(ctx, title, chapter, start, end)
	if err != nil {
		return "", err
	}

	nums := make([]int, 0, len(verses))
	for n := range verses {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var lines []string
	for _, n := range nums {
		words := verses[n]
		words[0] = capitalize(words[0])
		lines = append(lines, fmt.Sprintf("[%d] %s", n, strings.Join(words, " ")))
	}
	return strings.Join(lines, "\n"), nil
}

// LineContext returns a window of raw source lines around the given
// 1-based line number, read from the book's persisted text file.
func (s *WordService) LineContext(ctx context.Context, title string, lineNum int) (string, error) {
	title = strings.ToLower(title)
	lines, err := s.texts.ReadLines(title)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("book %s: %w", title, models.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if lineNum < 1 || lineNum > len(lines) {
		return "", fmt.Errorf("line %d of %s: %w", lineNum, title, models.ErrNotFound)
	}

	start := lineNum - 1 - contextRadius
	if start < 0 {
		start = 0
	}
	end := lineNum + contextRadius
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n"), nil
}

func capitalize(w string) string {
	r := []rune(w)
	if len(r) == 0 {
		return w
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
