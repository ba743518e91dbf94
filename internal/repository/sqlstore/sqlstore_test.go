package sqlstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/bible-concord-api/internal/db"
	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/parser"
)

const genesisText = `Genesis.1
[1] In the beginning God created the heaven and the earth
[2] And the earth was without form and void
[3] And God said let there be light and there was light
Genesis.2
[1] Thus the heavens and the earth were finished
`

const exodusText = `Exodus.1
[1] And the king spake
[2] And God heard them
`

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.Open(context.Background(), "sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func parsedBook(t *testing.T, title, text string) *models.ParsedBook {
	t.Helper()
	chapters, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("parse %s: %v", title, err)
	}
	return &models.ParsedBook{
		Title:    title,
		Division: "torah",
		FilePath: "/tmp/" + title + ".txt",
		FileSize: int64(len(text)),
		Chapters: chapters,
	}
}

func ingestBook(t *testing.T, d *sqlx.DB, title, text string) *models.ParsedBook {
	t.Helper()
	book := parsedBook(t, title, text)
	if _, err := NewBookRepository(d).Ingest(context.Background(), book); err != nil {
		t.Fatalf("ingest %s: %v", title, err)
	}
	return book
}

func TestIngestRoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	book := ingestBook(t, d, "genesis", genesisText)
	repo := NewBookRepository(d)

	stats, err := repo.Statistics(ctx, "genesis")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	wantWords, wantVerses := 0, 0
	for _, ch := range book.Chapters {
		wantVerses += ch.NumVerses
		for _, v := range ch.Verses {
			wantWords += v.NumWords
		}
	}
	if stats.NumChapters != len(book.Chapters) {
		t.Errorf("NumChapters = %d, want %d", stats.NumChapters, len(book.Chapters))
	}
	if stats.NumVerses != wantVerses {
		t.Errorf("NumVerses = %d, want %d", stats.NumVerses, wantVerses)
	}
	if stats.TotalWords != wantWords {
		t.Errorf("TotalWords = %d, want %d", stats.TotalWords, wantWords)
	}
	if stats.UniqueWords <= 0 || stats.UniqueWords > wantWords {
		t.Errorf("UniqueWords = %d out of range (0, %d]", stats.UniqueWords, wantWords)
	}
	if stats.TotalLetters <= 0 {
		t.Errorf("TotalLetters = %d, want > 0", stats.TotalLetters)
	}
	if stats.AvgWordsPerVerse != float64(wantWords)/float64(wantVerses) {
		t.Errorf("AvgWordsPerVerse = %v", stats.AvgWordsPerVerse)
	}

	got, err := repo.ByTitle(ctx, "genesis")
	if err != nil {
		t.Fatalf("by title: %v", err)
	}
	if got.NumChapters != 2 || got.Division != "torah" {
		t.Errorf("book row = %+v", got)
	}
}

func TestIngestUniqueCoordinates(t *testing.T) {
	d := openTestDB(t)
	ingestBook(t, d, "genesis", genesisText)

	var n int
	err := d.Get(&n, `
		SELECT COUNT(*) FROM (
			SELECT book_id, chapter_num, verse_num, word_position, COUNT(*) c
			FROM word_appearance
			GROUP BY book_id, chapter_num, verse_num, word_position
			HAVING c > 1)`)
	if err != nil {
		t.Fatalf("coordinate check: %v", err)
	}
	if n != 0 {
		t.Errorf("%d coordinates occupied by more than one occurrence", n)
	}

	err = d.Get(&n, `
		SELECT COUNT(*) FROM (
			SELECT value, COUNT(*) c FROM word GROUP BY value HAVING c > 1)`)
	if err != nil {
		t.Fatalf("word dedup check: %v", err)
	}
	if n != 0 {
		t.Errorf("%d word values stored more than once", n)
	}
}

func TestIngestDuplicateTitleRejected(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	repo := NewBookRepository(d)

	var before int
	if err := d.Get(&before, `SELECT COUNT(*) FROM word_appearance`); err != nil {
		t.Fatalf("count occurrences: %v", err)
	}

	_, err := repo.Ingest(ctx, parsedBook(t, "genesis", exodusText))
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate ingest error = %v, want ErrConflict", err)
	}

	var after int
	if err := d.Get(&after, `SELECT COUNT(*) FROM word_appearance`); err != nil {
		t.Fatalf("count occurrences: %v", err)
	}
	if after != before {
		t.Errorf("occurrence count changed %d -> %d on rejected ingest", before, after)
	}
}

func TestSharedWordsAcrossBooks(t *testing.T) {
	d := openTestDB(t)
	ingestBook(t, d, "genesis", genesisText)
	ingestBook(t, d, "exodus", exodusText)

	// "the" appears in both books but must have exactly one dictionary row.
	var n int
	if err := d.Get(&n, `SELECT COUNT(*) FROM word WHERE value = 'the'`); err != nil {
		t.Fatalf("count 'the': %v", err)
	}
	if n != 1 {
		t.Errorf("'the' stored %d times, want 1", n)
	}
}

func TestCascadeDelete(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	ingestBook(t, d, "exodus", exodusText)

	repo := NewBookRepository(d)
	groups := NewGroupRepository(d)
	if err := groups.Create(ctx, "divine"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := groups.AddWord(ctx, "divine", "god"); err != nil {
		t.Fatalf("add word: %v", err)
	}

	if err := repo.Delete(ctx, "genesis"); err != nil {
		t.Fatalf("delete book: %v", err)
	}

	var n int
	if err := d.Get(&n, `SELECT COUNT(*) FROM chapter c JOIN book b ON b.book_id = c.book_id WHERE b.title = 'genesis'`); err != nil {
		t.Fatalf("count chapters: %v", err)
	}
	if n != 0 {
		t.Errorf("%d genesis chapters survive deletion", n)
	}
	if err := d.Get(&n, `SELECT COUNT(*) FROM word_appearance wa JOIN book b ON b.book_id = wa.book_id WHERE b.title = 'genesis'`); err != nil {
		t.Fatalf("count occurrences: %v", err)
	}
	if n != 0 {
		t.Errorf("%d genesis occurrences survive deletion", n)
	}

	// "god" is still referenced by exodus, and its group membership is
	// untouched by the book deletion.
	if err := d.Get(&n, `SELECT COUNT(*) FROM word WHERE value = 'god'`); err != nil {
		t.Fatalf("count 'god': %v", err)
	}
	if n != 1 {
		t.Errorf("'god' rows = %d, want 1", n)
	}
	words, err := groups.Words(ctx, "divine")
	if err != nil {
		t.Fatalf("group words: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"god"}) {
		t.Errorf("group words = %v, want [god]", words)
	}

	if err := repo.Delete(ctx, "genesis"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestFilteredWords(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	ingestBook(t, d, "exodus", exodusText)
	repo := NewWordRepository(d)

	words, total, err := repo.FilteredWords(ctx, models.WordFilters{WordStartsWith: strPtr("th")}, 0, 100)
	if err != nil {
		t.Fatalf("filtered words: %v", err)
	}
	want := []string{"the", "them", "there", "thus"}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v, want %v", words, want)
	}
	if total != len(want) {
		t.Errorf("total = %d, want %d", total, len(want))
	}

	// Book + chapter narrows to the exodus fixture.
	words, total, err = repo.FilteredWords(ctx, models.WordFilters{
		Book:    strPtr("exodus"),
		Chapter: intPtr(1),
		Verse:   intPtr(2),
	}, 0, 100)
	if err != nil {
		t.Fatalf("filtered words: %v", err)
	}
	want = []string{"and", "god", "heard", "them"}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v, want %v", words, want)
	}
	if total != len(want) {
		t.Errorf("total = %d, want %d", total, len(want))
	}

	// Position filter: words opening a verse.
	words, _, err = repo.FilteredWords(ctx, models.WordFilters{
		Book:         strPtr("genesis"),
		WordPosition: intPtr(1),
	}, 0, 100)
	if err != nil {
		t.Fatalf("filtered words: %v", err)
	}
	want = []string{"and", "in", "thus"}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("first words = %v, want %v", words, want)
	}
}

func TestFilteredWordsByGroup(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	groups := NewGroupRepository(d)
	if err := groups.Create(ctx, "divine"); err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, w := range []string{"god", "light"} {
		if err := groups.AddWord(ctx, "divine", w); err != nil {
			t.Fatalf("add %s: %v", w, err)
		}
	}

	words, total, err := NewWordRepository(d).FilteredWords(ctx,
		models.WordFilters{GroupName: strPtr("divine")}, 0, 100)
	if err != nil {
		t.Fatalf("filtered words: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"god", "light"}) || total != 2 {
		t.Errorf("words = %v total = %d, want [god light] 2", words, total)
	}
}

func TestPaginationDeterminism(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	ingestBook(t, d, "exodus", exodusText)
	repo := NewWordRepository(d)

	_, total, err := repo.FilteredWords(ctx, models.WordFilters{}, 0, 1000)
	if err != nil {
		t.Fatalf("filtered words: %v", err)
	}
	all, _, err := repo.FilteredWords(ctx, models.WordFilters{}, 0, total)
	if err != nil {
		t.Fatalf("single page: %v", err)
	}

	pageSize := 3
	var paged []string
	for page := 0; page*pageSize < total; page++ {
		words, pageTotal, err := repo.FilteredWords(ctx, models.WordFilters{}, page, pageSize)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if pageTotal != total {
			t.Errorf("page %d total = %d, want %d", page, pageTotal, total)
		}
		paged = append(paged, words...)
	}
	if !reflect.DeepEqual(paged, all) {
		t.Errorf("concatenated pages = %v, want %v", paged, all)
	}
}

func TestWordOccurrences(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	ingestBook(t, d, "exodus", exodusText)
	repo := NewWordRepository(d)

	occs, total, err := repo.Occurrences(ctx, "god", models.WordFilters{}, 0, 100)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	// exodus 1:2 pos 2, genesis 1:1 pos 4, genesis 1:3 pos 2 - ordered
	// by book title first.
	if total != 3 || len(occs) != 3 {
		t.Fatalf("total = %d, len = %d, want 3", total, len(occs))
	}
	if occs[0].Book != "exodus" || occs[0].Chapter != 1 || occs[0].Verse != 2 || occs[0].WordPosition != 2 {
		t.Errorf("occs[0] = %+v", occs[0])
	}
	if occs[1].Book != "genesis" || occs[1].Verse != 1 || occs[1].WordPosition != 4 {
		t.Errorf("occs[1] = %+v", occs[1])
	}
	if occs[2].Book != "genesis" || occs[2].Verse != 3 || occs[2].WordPosition != 2 {
		t.Errorf("occs[2] = %+v", occs[2])
	}
	if occs[1].LineNum != 2 {
		t.Errorf("occs[1].LineNum = %d, want 2", occs[1].LineNum)
	}

	occs, total, err = repo.Occurrences(ctx, "god", models.WordFilters{Book: strPtr("genesis")}, 0, 100)
	if err != nil {
		t.Fatalf("filtered occurrences: %v", err)
	}
	if total != 2 || len(occs) != 2 {
		t.Errorf("genesis total = %d len = %d, want 2", total, len(occs))
	}

	occs, total, err = repo.Occurrences(ctx, "nonexistent", models.WordFilters{}, 0, 100)
	if err != nil {
		t.Fatalf("missing word: %v", err)
	}
	if total != 0 || len(occs) != 0 {
		t.Errorf("missing word total = %d len = %d, want 0", total, len(occs))
	}
}

func TestNumVersesAndWords(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	repo := NewBookRepository(d)

	n, err := repo.NumVerses(ctx, "genesis", 1)
	if err != nil {
		t.Fatalf("num verses: %v", err)
	}
	if n != 3 {
		t.Errorf("NumVerses = %d, want 3", n)
	}

	if _, err := repo.NumVerses(ctx, "genesis", 9); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing chapter error = %v, want ErrNotFound", err)
	}
	if _, err := repo.NumVerses(ctx, "leviticus", 1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing book error = %v, want ErrNotFound", err)
	}

	n, err = repo.NumWordsInVerse(ctx, "genesis", 1, 2)
	if err != nil {
		t.Fatalf("num words: %v", err)
	}
	if n != 8 {
		t.Errorf("NumWordsInVerse = %d, want 8", n)
	}
}

func TestGroupLifecycle(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	groups := NewGroupRepository(d)

	if err := groups.Create(ctx, "divine"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := groups.Create(ctx, "divine"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate create error = %v, want ErrConflict", err)
	}

	if err := groups.AddWord(ctx, "divine", "god"); err != nil {
		t.Fatalf("add word: %v", err)
	}
	if err := groups.AddWord(ctx, "divine", "god"); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate membership error = %v, want ErrConflict", err)
	}
	if err := groups.AddWord(ctx, "divine", "zebra"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown word error = %v, want ErrNotFound", err)
	}
	if err := groups.AddWord(ctx, "missing", "god"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown group error = %v, want ErrNotFound", err)
	}

	index, err := groups.OccurrenceIndex(ctx, "divine")
	if err != nil {
		t.Fatalf("occurrence index: %v", err)
	}
	if len(index["god"]) != 2 {
		t.Errorf("god occurrences = %d, want 2", len(index["god"]))
	}

	if err := groups.Delete(ctx, "divine"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := groups.Words(ctx, "divine"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("words after delete error = %v, want ErrNotFound", err)
	}
}

func TestPhraseStorage(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()
	ingestBook(t, d, "genesis", genesisText)
	phrases := NewPhraseRepository(d)
	books := NewBookRepository(d)

	book, err := books.ByTitle(ctx, "genesis")
	if err != nil {
		t.Fatalf("by title: %v", err)
	}

	refs := []models.Reference{{BookID: book.BookID, Chapter: 1, Verse: 1, WordPosition: 2, LineNum: 2}}
	if err := phrases.Insert(ctx, "the beginning", refs); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := phrases.Insert(ctx, "the beginning", refs); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate insert error = %v, want ErrConflict", err)
	}

	got, err := phrases.References(ctx, "the beginning")
	if err != nil {
		t.Fatalf("references: %v", err)
	}
	if len(got) != 1 || got[0].Book != "genesis" || got[0].WordPosition != 2 {
		t.Errorf("references = %+v", got)
	}

	if err := phrases.Delete(ctx, "the beginning"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int
	if err := d.Get(&n, `SELECT COUNT(*) FROM phrase_reference`); err != nil {
		t.Fatalf("count references: %v", err)
	}
	if n != 0 {
		t.Errorf("%d references survive phrase deletion", n)
	}
	if _, err := phrases.References(ctx, "the beginning"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("references after delete error = %v, want ErrNotFound", err)
	}
}
