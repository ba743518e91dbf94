package models

import "time"

// Book is one ingested book. Title is stored lowercased and is unique
// across the corpus.
type Book struct {
	BookID      int64     `json:"book_id" db:"book_id"`
	Title       string    `json:"title" db:"title"`
	Division    string    `json:"division" db:"division"`
	FilePath    string    `json:"-" db:"file_path"`
	FileSize    int64     `json:"file_size" db:"file_size"`
	NumChapters int       `json:"num_chapters" db:"num_chapters"`
	InsertDate  time.Time `json:"insert_date" db:"insert_date"`
}

// Chapter records the verse count of one chapter of a book.
type Chapter struct {
	BookID     int64 `db:"book_id"`
	NumChapter int   `db:"num_chapter"`
	NumVerses  int   `db:"num_verses"`
}

// Word is a globally deduplicated dictionary entry. Value is the
// normalized (lowercased) word text.
type Word struct {
	WordID int64  `json:"word_id" db:"word_id"`
	Value  string `json:"value" db:"value"`
	Length int    `json:"length" db:"length"`
}

// Occurrence is one placement of one word at an exact coordinate.
// The tuple (book, chapter, verse, position) is unique.
type Occurrence struct {
	Book         string `json:"book" db:"title"`
	Chapter      int    `json:"chapter" db:"chapter_num"`
	Verse        int    `json:"verse" db:"verse_num"`
	WordPosition int    `json:"word_position" db:"word_position"`
	LineNum      int    `json:"line_num_in_file" db:"line_num_in_file"`
}

// Group is a named, user-curated set of words.
type Group struct {
	GroupID int64  `json:"group_id" db:"group_id"`
	Name    string `json:"name" db:"name"`
}

// Phrase is a stored multi-word unit with cached references.
type Phrase struct {
	PhraseID   int64  `json:"phrase_id" db:"phrase_id"`
	PhraseText string `json:"phrase_text" db:"phrase_text"`
}

// Reference marks where a phrase begins in the corpus. WordPosition is
// the position of the phrase's first word within the verse.
type Reference struct {
	BookID       int64  `json:"-" db:"book_id"`
	Book         string `json:"book" db:"title"`
	Chapter      int    `json:"chapter" db:"chapter_num"`
	Verse        int    `json:"verse" db:"verse_num"`
	WordPosition int    `json:"word_position" db:"word_position"`
	LineNum      int    `json:"line_num_in_file" db:"line_num_in_file"`
}

// PositionedWord is one occurrence row consumed by the phrase locator:
// a word value at its exact coordinate.
type PositionedWord struct {
	BookID   int64  `db:"book_id"`
	Book     string `db:"title"`
	Chapter  int    `db:"chapter_num"`
	Verse    int    `db:"verse_num"`
	LineNum  int    `db:"line_num_in_file"`
	Position int    `db:"word_position"`
	Word     string `db:"value"`
}

// ParsedVerse is one verse produced by the text parser. Words are
// normalized and LineNum is the 1-based line of the verse in the raw
// source text.
type ParsedVerse struct {
	VerseNum int
	NumWords int
	Words    []string
	LineNum  int
}

// ParsedChapter is one chapter produced by the text parser.
type ParsedChapter struct {
	ChapterNum int
	NumVerses  int
	Verses     []ParsedVerse
}

// ParsedBook is the parser output handed to ingestion.
type ParsedBook struct {
	Title    string
	Division string
	FilePath string
	FileSize int64
	Chapters []ParsedChapter
}

// WordFilters narrows word and occurrence queries. Nil means "no
// constraint"; set filters are AND-combined.
type WordFilters struct {
	WordStartsWith *string `json:"wordStartsWith,omitempty"`
	Book           *string `json:"book,omitempty"`
	Chapter        *int    `json:"chapter,omitempty"`
	Verse          *int    `json:"verse,omitempty"`
	WordPosition   *int    `json:"wordPosition,omitempty"`
	GroupName      *string `json:"groupName,omitempty"`
}

// WordQueryRequest is the request body for paginated word queries.
type WordQueryRequest struct {
	Filters   WordFilters `json:"filters"`
	PageIndex int         `json:"pageIndex"`
	PageSize  int         `json:"pageSize"`
}

// WordPage is one page of distinct word values.
type WordPage struct {
	Words []string `json:"words"`
	Total int      `json:"total"`
}

// OccurrencePage is one page of occurrence coordinates.
type OccurrencePage struct {
	Occurrences []Occurrence `json:"wordAppearances"`
	Total       int          `json:"total"`
}

// IngestResult reports a successful ingestion. Warning is set when the
// book was indexed but its raw text could not be persisted, so context
// lookups for it will fail until it is re-ingested.
type IngestResult struct {
	NumChapters int    `json:"num_chapters"`
	Warning     string `json:"warning,omitempty"`
}

// BookStatistics aggregates corpus counts, for one book or for all
// books when Book is empty.
type BookStatistics struct {
	Book                string  `json:"book,omitempty"`
	NumChapters         int     `json:"num_chapters"`
	NumVerses           int     `json:"num_verses"`
	TotalWords          int     `json:"total_words"`
	UniqueWords         int     `json:"unique_words"`
	TotalLetters        int     `json:"total_letters"`
	AvgWordsPerChapter  float64 `json:"avg_words_per_chapter"`
	AvgWordsPerVerse    float64 `json:"avg_words_per_verse"`
	AvgVersesPerChapter float64 `json:"avg_verses_per_chapter"`
	AvgLettersPerVerse  float64 `json:"avg_letters_per_verse"`
}

// GeneralStats counts top-level entities across the corpus.
type GeneralStats struct {
	TotalBooks   int `json:"total_books"`
	TotalGroups  int `json:"total_groups"`
	TotalPhrases int `json:"total_phrases"`
}
