// Package sqlstore implements the repository interfaces over any
// sqlx-supported relational store. All queries use ? bindvars and are
// rebound per driver, so the same code runs on PostgreSQL and SQLite.
package sqlstore

import (
	"strings"

	"github.com/bible-concord-api/internal/models"
)

// isUniqueViolation reports whether the error is a unique-constraint
// violation, across drivers (lib/pq says "duplicate key", sqlite3 says
// "UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}

// occurrenceFilters builds AND-combined predicates over the joined
// word_appearance/word/book rows for the recognized filter keys. The
// returned clauses reference the aliases wa, w and b.
func occurrenceFilters(f models.WordFilters) (clauses []string, args []interface{}) {
	if f.WordStartsWith != nil && *f.WordStartsWith != "" {
		clauses = append(clauses, "w.value LIKE ?")
		args = append(args, strings.ToLower(*f.WordStartsWith)+"%")
	}
	if f.Book != nil && *f.Book != "" {
		clauses = append(clauses, "b.title = ?")
		args = append(args, strings.ToLower(*f.Book))
	}
	if f.Chapter != nil {
		clauses = append(clauses, "wa.chapter_num = ?")
		args = append(args, *f.Chapter)
	}
	if f.Verse != nil {
		clauses = append(clauses, "wa.verse_num = ?")
		args = append(args, *f.Verse)
	}
	if f.WordPosition != nil {
		clauses = append(clauses, "wa.word_position = ?")
		args = append(args, *f.WordPosition)
	}
	if f.GroupName != nil && *f.GroupName != "" {
		clauses = append(clauses, `wa.word_id IN (
			SELECT wig.word_id FROM word_in_group wig
			JOIN word_group g ON g.group_id = wig.group_id
			WHERE g.name = ?)`)
		args = append(args, strings.ToLower(*f.GroupName))
	}
	return clauses, args
}

// whereSQL joins predicate clauses into a WHERE fragment, or returns
// the empty string when there are none.
func whereSQL(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}
