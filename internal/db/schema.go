package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// The five core tables plus the group/phrase family. The occurrence
// fact table (word_appearance) enforces one word per coordinate via
// the (book, chapter, verse, position) unique constraint. All child
// rows cascade from their owning book or phrase.

const postgresSchema = `
CREATE TABLE IF NOT EXISTS book (
	book_id BIGSERIAL PRIMARY KEY,
	title VARCHAR(64) NOT NULL UNIQUE,
	division VARCHAR(64) NOT NULL,
	file_path VARCHAR(256) NOT NULL,
	file_size BIGINT NOT NULL,
	num_chapters INTEGER NOT NULL,
	insert_date TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chapter (
	book_id BIGINT NOT NULL REFERENCES book(book_id) ON DELETE CASCADE,
	num_chapter INTEGER NOT NULL,
	num_verses INTEGER NOT NULL,
	PRIMARY KEY (book_id, num_chapter)
);

CREATE TABLE IF NOT EXISTS word (
	word_id BIGSERIAL PRIMARY KEY,
	value VARCHAR(64) NOT NULL UNIQUE,
	length INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS word_appearance (
	id BIGSERIAL PRIMARY KEY,
	book_id BIGINT NOT NULL REFERENCES book(book_id) ON DELETE CASCADE,
	word_id BIGINT NOT NULL REFERENCES word(word_id) ON DELETE CASCADE,
	chapter_num INTEGER NOT NULL,
	verse_num INTEGER NOT NULL,
	word_position INTEGER NOT NULL,
	line_num_in_file INTEGER NOT NULL,
	UNIQUE (book_id, chapter_num, verse_num, word_position)
);

CREATE INDEX IF NOT EXISTS word_appearance_word_idx ON word_appearance (word_id);

CREATE TABLE IF NOT EXISTS word_group (
	group_id BIGSERIAL PRIMARY KEY,
	name VARCHAR(64) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS word_in_group (
	group_id BIGINT NOT NULL REFERENCES word_group(group_id) ON DELETE CASCADE,
	word_id BIGINT NOT NULL REFERENCES word(word_id) ON DELETE CASCADE,
	PRIMARY KEY (group_id, word_id)
);

CREATE TABLE IF NOT EXISTS phrase (
	phrase_id BIGSERIAL PRIMARY KEY,
	phrase_text VARCHAR(128) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS phrase_reference (
	id BIGSERIAL PRIMARY KEY,
	phrase_id BIGINT NOT NULL REFERENCES phrase(phrase_id) ON DELETE CASCADE,
	book_id BIGINT NOT NULL REFERENCES book(book_id) ON DELETE CASCADE,
	chapter_num INTEGER NOT NULL,
	verse_num INTEGER NOT NULL,
	word_position INTEGER NOT NULL,
	line_num_in_file INTEGER NOT NULL
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS book (
	book_id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	division TEXT NOT NULL,
	file_path TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	num_chapters INTEGER NOT NULL,
	insert_date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chapter (
	book_id INTEGER NOT NULL REFERENCES book(book_id) ON DELETE CASCADE,
	num_chapter INTEGER NOT NULL,
	num_verses INTEGER NOT NULL,
	PRIMARY KEY (book_id, num_chapter)
);

CREATE TABLE IF NOT EXISTS word (
	word_id INTEGER PRIMARY KEY AUTOINCREMENT,
	value TEXT NOT NULL UNIQUE,
	length INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS word_appearance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id INTEGER NOT NULL REFERENCES book(book_id) ON DELETE CASCADE,
	word_id INTEGER NOT NULL REFERENCES word(word_id) ON DELETE CASCADE,
	chapter_num INTEGER NOT NULL,
	verse_num INTEGER NOT NULL,
	word_position INTEGER NOT NULL,
	line_num_in_file INTEGER NOT NULL,
	UNIQUE (book_id, chapter_num, verse_num, word_position)
);

CREATE INDEX IF NOT EXISTS word_appearance_word_idx ON word_appearance (word_id);

CREATE TABLE IF NOT EXISTS word_group (
	group_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS word_in_group (
	group_id INTEGER NOT NULL REFERENCES word_group(group_id) ON DELETE CASCADE,
	word_id INTEGER NOT NULL REFERENCES word(word_id) ON DELETE CASCADE,
	PRIMARY KEY (group_id, word_id)
);

CREATE TABLE IF NOT EXISTS phrase (
	phrase_id INTEGER PRIMARY KEY AUTOINCREMENT,
	phrase_text TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS phrase_reference (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	phrase_id INTEGER NOT NULL REFERENCES phrase(phrase_id) ON DELETE CASCADE,
	book_id INTEGER NOT NULL REFERENCES book(book_id) ON DELETE CASCADE,
	chapter_num INTEGER NOT NULL,
	verse_num INTEGER NOT NULL,
	word_position INTEGER NOT NULL,
	line_num_in_file INTEGER NOT NULL
);
`

// Migrate applies the schema for the handle's driver. Statements are
// idempotent so re-running on an existing database is a no-op.
func Migrate(d *sqlx.DB) error {
	schema := postgresSchema
	if d.DriverName() == "sqlite3" {
		schema = sqliteSchema
		// Cascades depend on foreign key enforcement, which SQLite
		// leaves off by default.
		if _, err := d.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
