package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository"
)

// PhraseRepository implements repository.PhraseRepository.
type PhraseRepository struct {
	db *sqlx.DB
}

// NewPhraseRepository creates a phrase repository over db.
func NewPhraseRepository(db *sqlx.DB) repository.PhraseRepository {
	return &PhraseRepository{db: db}
}

// Insert persists the phrase and its cached references in one
// transaction, so a phrase never exists without the references that
// justified it.
func (r *PhraseRepository) Insert(ctx context.Context, text string, refs []models.Reference) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin phrase insert: %w", err)
	}
	defer tx.Rollback()

	var phraseID int64
	err = tx.QueryRowxContext(ctx,
		r.db.Rebind(`INSERT INTO phrase (phrase_text) VALUES (?) RETURNING phrase_id`),
		text).Scan(&phraseID)
	if isUniqueViolation(err) {
		return fmt.Errorf("phrase %s: %w", text, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert phrase %s: %w", text, err)
	}

	refStmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO phrase_reference (phrase_id, book_id, chapter_num, verse_num, word_position, line_num_in_file)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare reference insert: %w", err)
	}
	defer refStmt.Close()
	for _, ref := range refs {
		if _, err := refStmt.ExecContext(ctx, phraseID, ref.BookID,
			ref.Chapter, ref.Verse, ref.WordPosition, ref.LineNum); err != nil {
			return fmt.Errorf("insert phrase reference: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit phrase insert: %w", err)
	}
	return nil
}

// Texts returns all stored phrase texts ordered alphabetically.
func (r *PhraseRepository) Texts(ctx context.Context) ([]string, error) {
	var texts []string
	if err := r.db.SelectContext(ctx, &texts, `SELECT phrase_text FROM phrase ORDER BY phrase_text`); err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	return texts, nil
}

// Exists reports whether the phrase text is stored.
func (r *PhraseRepository) Exists(ctx context.Context, text string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.db.Rebind(`SELECT COUNT(*) FROM phrase WHERE phrase_text = ?`), text)
	if err != nil {
		return false, fmt.Errorf("check phrase %s: %w", text, err)
	}
	return n > 0, nil
}

// References returns the cached coordinates of a stored phrase, ordered
// for stable display.
func (r *PhraseRepository) References(ctx context.Context, text string) ([]models.Reference, error) {
	var phraseID int64
	err := r.db.GetContext(ctx, &phraseID,
		r.db.Rebind(`SELECT phrase_id FROM phrase WHERE phrase_text = ?`), text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("phrase %s: %w", text, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get phrase %s: %w", text, err)
	}

	var refs []models.Reference
	err = r.db.SelectContext(ctx, &refs, r.db.Rebind(`
		SELECT pr.book_id, b.title, pr.chapter_num, pr.verse_num, pr.word_position, pr.line_num_in_file
		FROM phrase_reference pr
		JOIN book b ON b.book_id = pr.book_id
		WHERE pr.phrase_id = ?
		ORDER BY b.title, pr.chapter_num, pr.verse_num, pr.word_position`), phraseID)
	if err != nil {
		return nil, fmt.Errorf("list references of %s: %w", text, err)
	}
	if refs == nil {
		refs = []models.Reference{}
	}
	return refs, nil
}

// Delete removes a phrase; its references cascade.
func (r *PhraseRepository) Delete(ctx context.Context, text string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM phrase WHERE phrase_text = ?`), text)
	if err != nil {
		return fmt.Errorf("delete phrase %s: %w", text, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete phrase %s: %w", text, err)
	}
	if n == 0 {
		return fmt.Errorf("phrase %s: %w", text, models.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored phrases.
func (r *PhraseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM phrase`); err != nil {
		return 0, fmt.Errorf("count phrases: %w", err)
	}
	return n, nil
}

// VerseOccurrences returns every occurrence of any of the given words,
// ordered by coordinate so the locator can walk verse by verse.
func (r *PhraseRepository) VerseOccurrences(ctx context.Context, words []string) ([]models.PositionedWord, error) {
	if len(words) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT wa.book_id, b.title, wa.chapter_num, wa.verse_num, wa.line_num_in_file, wa.word_position, w.value
		FROM word_appearance wa
		JOIN word w ON w.word_id = wa.word_id
		JOIN book b ON b.book_id = wa.book_id
		WHERE w.value IN (?)
		ORDER BY wa.book_id, wa.chapter_num, wa.verse_num, wa.word_position`, words)
	if err != nil {
		return nil, fmt.Errorf("build occurrence scan: %w", err)
	}
	var rows []models.PositionedWord
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("scan occurrences: %w", err)
	}
	return rows, nil
}
