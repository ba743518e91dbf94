package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository"
)

// WordRepository implements repository.WordRepository.
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a word repository over db.
func NewWordRepository(db *sqlx.DB) repository.WordRepository {
	return &WordRepository{db: db}
}

const occurrenceJoin = `
	FROM word_appearance wa
	JOIN word w ON w.word_id = wa.word_id
	JOIN book b ON b.book_id = wa.book_id`

// FilteredWords returns one page of distinct word values matching the
// filters, ordered by value, plus the total distinct match count.
func (r *WordRepository) FilteredWords(ctx context.Context, f models.WordFilters, pageIndex, pageSize int) ([]string, int, error) {
	clauses, args := occurrenceFilters(f)
	where := whereSQL(clauses)

	// The count runs over the same predicate but without the page
	// slice; DISTINCT keeps repeated occurrences from inflating it.
	var total int
	err := r.db.GetContext(ctx, &total,
		r.db.Rebind(`SELECT COUNT(DISTINCT w.value)`+occurrenceJoin+where), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count filtered words: %w", err)
	}

	pageArgs := append(append([]interface{}{}, args...), pageSize, pageIndex*pageSize)
	var words []string
	err = r.db.SelectContext(ctx, &words, r.db.Rebind(
		`SELECT DISTINCT w.value`+occurrenceJoin+where+
			` ORDER BY w.value LIMIT ? OFFSET ?`), pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("select filtered words: %w", err)
	}
	if words == nil {
		words = []string{}
	}
	return words, total, nil
}

// Occurrences returns one page of coordinates for the given word under
// the filters, ordered by (book title, chapter, verse, position) for
// stable pagination, plus the total match count.
func (r *WordRepository) Occurrences(ctx context.Context, word string, f models.WordFilters, pageIndex, pageSize int) ([]models.Occurrence, int, error) {
	clauses, args := occurrenceFilters(f)
	clauses = append(clauses, "w.value = ?")
	args = append(args, strings.ToLower(word))
	where := whereSQL(clauses)

	var total int
	err := r.db.GetContext(ctx, &total,
		r.db.Rebind(`SELECT COUNT(*)`+occurrenceJoin+where), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count occurrences of %q: %w", word, err)
	}

	pageArgs := append(append([]interface{}{}, args...), pageSize, pageIndex*pageSize)
	var occs []models.Occurrence
	err = r.db.SelectContext(ctx, &occs, r.db.Rebind(
		`SELECT b.title, wa.chapter_num, wa.verse_num, wa.word_position, wa.line_num_in_file`+
			occurrenceJoin+where+
			` ORDER BY b.title, wa.chapter_num, wa.verse_num, wa.word_position LIMIT ? OFFSET ?`),
		pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("select occurrences of %q: %w", word, err)
	}
	if occs == nil {
		occs = []models.Occurrence{}
	}
	return occs, total, nil
}

// VerseWindow reconstructs the ordered word sequence of each verse in
// [fromVerse, toVerse] of one chapter.
func (r *WordRepository) VerseWindow(ctx context.Context, title string, chapter, fromVerse, toVerse int) (map[int][]string, error) {
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(`
		SELECT wa.verse_num, w.value`+occurrenceJoin+`
		WHERE b.title = ? AND wa.chapter_num = ? AND wa.verse_num BETWEEN ? AND ?
		ORDER BY wa.verse_num, wa.word_position`),
		title, chapter, fromVerse, toVerse)
	if err != nil {
		return nil, fmt.Errorf("select verse window: %w", err)
	}
	defer rows.Close()

	verses := make(map[int][]string)
	for rows.Next() {
		var verse int
		var value string
		if err := rows.Scan(&verse, &value); err != nil {
			return nil, fmt.Errorf("scan verse word: %w", err)
		}
		verses[verse] = append(verses[verse], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verse window: %w", err)
	}
	return verses, nil
}

// Exists reports whether the normalized word is in the dictionary.
func (r *WordRepository) Exists(ctx context.Context, value string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.db.Rebind(`SELECT COUNT(*) FROM word WHERE value = ?`), strings.ToLower(value))
	if err != nil {
		return false, fmt.Errorf("check word %q: %w", value, err)
	}
	return n > 0, nil
}
