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

// GroupRepository implements repository.GroupRepository.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a group repository over db.
func NewGroupRepository(db *sqlx.DB) repository.GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a new empty group.
func (r *GroupRepository) Create(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO word_group (name) VALUES (?)`), name)
	if isUniqueViolation(err) {
		return fmt.Errorf("group %s: %w", name, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert group %s: %w", name, err)
	}
	return nil
}

// Names returns all group names ordered alphabetically.
func (r *GroupRepository) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT name FROM word_group ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return names, nil
}

func (r *GroupRepository) groupID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id,
		r.db.Rebind(`SELECT group_id FROM word_group WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("group %s: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("get group %s: %w", name, err)
	}
	return id, nil
}

// AddWord puts an existing dictionary word into a group. The word must
// have been seen in some book; membership is unique per (group, word).
func (r *GroupRepository) AddWord(ctx context.Context, group, word string) error {
	groupID, err := r.groupID(ctx, group)
	if err != nil {
		return err
	}

	var wordID int64
	err = r.db.GetContext(ctx, &wordID,
		r.db.Rebind(`SELECT word_id FROM word WHERE value = ?`), word)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("word %s: %w", word, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get word %s: %w", word, err)
	}

	_, err = r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO word_in_group (group_id, word_id) VALUES (?, ?)`),
		groupID, wordID)
	if isUniqueViolation(err) {
		return fmt.Errorf("word %s in group %s: %w", word, group, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("add word %s to group %s: %w", word, group, err)
	}
	return nil
}

// Words returns the member word values of a group ordered by value.
func (r *GroupRepository) Words(ctx context.Context, name string) ([]string, error) {
	groupID, err := r.groupID(ctx, name)
	if err != nil {
		return nil, err
	}
	var words []string
	err = r.db.SelectContext(ctx, &words, r.db.Rebind(`
		SELECT w.value FROM word_in_group wig
		JOIN word w ON w.word_id = wig.word_id
		WHERE wig.group_id = ? ORDER BY w.value`), groupID)
	if err != nil {
		return nil, fmt.Errorf("list words in group %s: %w", name, err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// OccurrenceIndex returns every occurrence coordinate of every member
// word, keyed by word value.
func (r *GroupRepository) OccurrenceIndex(ctx context.Context, name string) (map[string][]models.Occurrence, error) {
	groupID, err := r.groupID(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(`
		SELECT w.value, b.title, wa.chapter_num, wa.verse_num, wa.word_position, wa.line_num_in_file
		FROM word_in_group wig
		JOIN word w ON w.word_id = wig.word_id
		JOIN word_appearance wa ON wa.word_id = w.word_id
		JOIN book b ON b.book_id = wa.book_id
		WHERE wig.group_id = ?
		ORDER BY w.value, b.title, wa.chapter_num, wa.verse_num, wa.word_position`), groupID)
	if err != nil {
		return nil, fmt.Errorf("group occurrence index %s: %w", name, err)
	}
	defer rows.Close()

	index := make(map[string][]models.Occurrence)
	for rows.Next() {
		var value string
		var occ models.Occurrence
		if err := rows.Scan(&value, &occ.Book, &occ.Chapter, &occ.Verse,
			&occ.WordPosition, &occ.LineNum); err != nil {
			return nil, fmt.Errorf("scan group occurrence: %w", err)
		}
		index[value] = append(index[value], occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group occurrences: %w", err)
	}
	return index, nil
}

// Delete removes a group; memberships cascade, words stay.
func (r *GroupRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM word_group WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("delete group %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete group %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", name, models.ErrNotFound)
	}
	return nil
}

// Count returns the number of groups.
func (r *GroupRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM word_group`); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}
