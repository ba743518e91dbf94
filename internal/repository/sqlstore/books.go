package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository"
)

// BookRepository implements repository.BookRepository.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository creates a book repository over db.
func NewBookRepository(db *sqlx.DB) repository.BookRepository {
	return &BookRepository{db: db}
}

// Ingest writes the book, its chapters, any dictionary words not yet
// known, and one occurrence row per word placement, all in a single
// transaction. Nothing of the book exists if any step fails.
func (r *BookRepository) Ingest(ctx context.Context, book *models.ParsedBook) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.GetContext(ctx, &existing,
		r.db.Rebind(`SELECT book_id FROM book WHERE title = ?`), book.Title)
	if err == nil {
		return 0, fmt.Errorf("book %s: %w", book.Title, models.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check book title: %w", err)
	}

	var bookID int64
	err = tx.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO book (title, division, file_path, file_size, num_chapters, insert_date)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING book_id`),
		book.Title, book.Division, book.FilePath, book.FileSize,
		len(book.Chapters), time.Now().UTC()).Scan(&bookID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("book %s: %w", book.Title, models.ErrConflict)
		}
		return 0, fmt.Errorf("insert book: %w", err)
	}

	chapterStmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO chapter (book_id, num_chapter, num_verses) VALUES (?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare chapter insert: %w", err)
	}
	defer chapterStmt.Close()
	for _, ch := range book.Chapters {
		if _, err := chapterStmt.ExecContext(ctx, bookID, ch.ChapterNum, ch.NumVerses); err != nil {
			return 0, fmt.Errorf("insert chapter %d: %w", ch.ChapterNum, err)
		}
	}

	wordIDs, err := ensureWords(ctx, tx, r.db, distinctWords(book))
	if err != nil {
		return 0, err
	}

	occStmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO word_appearance (book_id, word_id, chapter_num, verse_num, word_position, line_num_in_file)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare occurrence insert: %w", err)
	}
	defer occStmt.Close()
	for _, ch := range book.Chapters {
		for _, v := range ch.Verses {
			for i, w := range v.Words {
				// Positions are 1-based and consecutive per verse.
				if _, err := occStmt.ExecContext(ctx, bookID, wordIDs[w],
					ch.ChapterNum, v.VerseNum, i+1, v.LineNum); err != nil {
					return 0, fmt.Errorf("insert occurrence %s %d:%d:%d: %w",
						book.Title, ch.ChapterNum, v.VerseNum, i+1, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingest: %w", err)
	}
	return bookID, nil
}

// distinctWords collects the set of normalized words appearing anywhere
// in the book.
func distinctWords(book *models.ParsedBook) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, ch := range book.Chapters {
		for _, v := range ch.Verses {
			for _, w := range v.Words {
				if _, ok := seen[w]; !ok {
					seen[w] = struct{}{}
					words = append(words, w)
				}
			}
		}
	}
	return words
}

// ensureWords inserts dictionary rows for words not yet known and
// returns the id of every given word. ON CONFLICT DO NOTHING also
// absorbs the race where a concurrent ingest inserts the same value;
// the follow-up select reuses the winner's id.
func ensureWords(ctx context.Context, tx *sqlx.Tx, db *sqlx.DB, words []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(words))
	if len(words) == 0 {
		return ids, nil
	}

	insStmt, err := tx.PreparexContext(ctx, db.Rebind(`
		INSERT INTO word (value, length) VALUES (?, ?) ON CONFLICT (value) DO NOTHING`))
	if err != nil {
		return nil, fmt.Errorf("prepare word insert: %w", err)
	}
	defer insStmt.Close()
	for _, w := range words {
		if _, err := insStmt.ExecContext(ctx, w, len([]rune(w))); err != nil {
			return nil, fmt.Errorf("insert word %q: %w", w, err)
		}
	}

	query, args, err := sqlx.In(`SELECT word_id, value FROM word WHERE value IN (?)`, words)
	if err != nil {
		return nil, fmt.Errorf("build word lookup: %w", err)
	}
	rows, err := tx.QueryxContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("lookup word ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("scan word id: %w", err)
		}
		ids[value] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate word ids: %w", err)
	}
	if len(ids) != len(words) {
		return nil, fmt.Errorf("resolved %d of %d word ids", len(ids), len(words))
	}
	return ids, nil
}

// List returns all books ordered by title.
func (r *BookRepository) List(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.db.SelectContext(ctx, &books, `
		SELECT book_id, title, division, file_path, file_size, num_chapters, insert_date
		FROM book ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Titles returns all book titles ordered alphabetically.
func (r *BookRepository) Titles(ctx context.Context) ([]string, error) {
	var titles []string
	if err := r.db.SelectContext(ctx, &titles, `SELECT title FROM book ORDER BY title`); err != nil {
		return nil, fmt.Errorf("list book titles: %w", err)
	}
	return titles, nil
}

// ByTitle returns the book with the given (already normalized) title.
func (r *BookRepository) ByTitle(ctx context.Context, title string) (*models.Book, error) {
	var book models.Book
	err := r.db.GetContext(ctx, &book, r.db.Rebind(`
		SELECT book_id, title, division, file_path, file_size, num_chapters, insert_date
		FROM book WHERE title = ?`), title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %s: %w", title, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", title, err)
	}
	return &book, nil
}

// Delete removes a book; chapters, occurrences and phrase references
// go with it via cascade.
func (r *BookRepository) Delete(ctx context.Context, title string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM book WHERE title = ?`), title)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book %s: %w", title, err)
	}
	if n == 0 {
		return fmt.Errorf("book %s: %w", title, models.ErrNotFound)
	}
	return nil
}

// NumVerses returns the verse count of one chapter.
func (r *BookRepository) NumVerses(ctx context.Context, title string, chapter int) (int, error) {
	book, err := r.ByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT num_verses FROM chapter WHERE book_id = ? AND num_chapter = ?`),
		book.BookID, chapter)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("chapter %d of %s: %w", chapter, title, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get verse count: %w", err)
	}
	return n, nil
}

// NumWordsInVerse counts the occurrences at one (book, chapter, verse)
// coordinate.
func (r *BookRepository) NumWordsInVerse(ctx context.Context, title string, chapter, verse int) (int, error) {
	book, err := r.ByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.GetContext(ctx, &n, r.db.Rebind(`
		SELECT COUNT(*) FROM word_appearance
		WHERE book_id = ? AND chapter_num = ? AND verse_num = ?`),
		book.BookID, chapter, verse)
	if err != nil {
		return 0, fmt.Errorf("count words in verse: %w", err)
	}
	return n, nil
}

// Statistics aggregates chapter, verse, word and letter counts for one
// book or for the whole corpus when title is empty.
func (r *BookRepository) Statistics(ctx context.Context, title string) (*models.BookStatistics, error) {
	stats := &models.BookStatistics{Book: title}

	var scope string
	var args []interface{}
	if title != "" {
		book, err := r.ByTitle(ctx, title)
		if err != nil {
			return nil, err
		}
		scope = " WHERE book_id = ?"
		args = []interface{}{book.BookID}
	}

	if err := r.db.GetContext(ctx, &stats.NumChapters,
		r.db.Rebind(`SELECT COUNT(*) FROM chapter`+scope), args...); err != nil {
		return nil, fmt.Errorf("count chapters: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.NumVerses,
		r.db.Rebind(`SELECT COALESCE(SUM(num_verses), 0) FROM chapter`+scope), args...); err != nil {
		return nil, fmt.Errorf("count verses: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalWords,
		r.db.Rebind(`SELECT COUNT(*) FROM word_appearance`+scope), args...); err != nil {
		return nil, fmt.Errorf("count words: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.UniqueWords,
		r.db.Rebind(`SELECT COUNT(DISTINCT word_id) FROM word_appearance`+scope), args...); err != nil {
		return nil, fmt.Errorf("count unique words: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.TotalLetters, r.db.Rebind(`
		SELECT COALESCE(SUM(w.length), 0)
		FROM word_appearance wa JOIN word w ON w.word_id = wa.word_id`+
		replaceAlias(scope)), args...); err != nil {
		return nil, fmt.Errorf("count letters: %w", err)
	}

	if stats.NumChapters > 0 {
		stats.AvgWordsPerChapter = float64(stats.TotalWords) / float64(stats.NumChapters)
		stats.AvgVersesPerChapter = float64(stats.NumVerses) / float64(stats.NumChapters)
	}
	if stats.NumVerses > 0 {
		stats.AvgWordsPerVerse = float64(stats.TotalWords) / float64(stats.NumVerses)
		stats.AvgLettersPerVerse = float64(stats.TotalLetters) / float64(stats.NumVerses)
	}
	return stats, nil
}

// replaceAlias qualifies the book_id scope predicate for queries that
// alias word_appearance as wa.
func replaceAlias(scope string) string {
	if scope == "" {
		return ""
	}
	return " WHERE wa.book_id = ?"
}

// Count returns the number of ingested books.
func (r *BookRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM book`); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}
