// Package parser splits raw book text into chapters, verses and
// normalized words using the line-oriented corpus conventions: a
// chapter marker line such as "Genesis.1" or "1.Kings.3" followed by
// verse lines of the form "[<n>] <verse text>".
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bible-concord-api/internal/models"
)

var (
	chapterMarkerRe = regexp.MustCompile(`^(?:\d+\.)?[A-Za-z]+\.(\d+)\s*$`)
	verseLineRe     = regexp.MustCompile(`^\[(\d+)\]\s+(.*)$`)
	nonWordRe       = regexp.MustCompile(`[^\w\s']`)
)

// Parse splits raw book text into ordered chapters. Any line that is
// neither blank, a chapter marker, nor a well-formed verse line is a
// fatal error naming the line, as is a chapter with no verses and an
// input with no chapters at all.
func Parse(text string) ([]models.ParsedChapter, error) {
	var chapters []models.ParsedChapter
	var current *models.ParsedChapter

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := chapterMarkerRe.FindStringSubmatch(line); m != nil {
			if current != nil && len(current.Verses) == 0 {
				return nil, fmt.Errorf("chapter %d has no verses", current.ChapterNum)
			}
			if current != nil {
				current.NumVerses = len(current.Verses)
				chapters = append(chapters, *current)
			}
			num, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad chapter number %q", lineNum, m[1])
			}
			current = &models.ParsedChapter{ChapterNum: num}
			continue
		}

		m := verseLineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: malformed verse line %q", lineNum, line)
		}
		if current == nil {
			return nil, fmt.Errorf("line %d: verse outside of any chapter", lineNum)
		}
		verseNum, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad verse number %q", lineNum, m[1])
		}
		words := NormalizeWords(m[2])
		current.Verses = append(current.Verses, models.ParsedVerse{
			VerseNum: verseNum,
			NumWords: len(words),
			Words:    words,
			LineNum:  lineNum,
		})
	}

	if current != nil {
		if len(current.Verses) == 0 {
			return nil, fmt.Errorf("chapter %d has no verses", current.ChapterNum)
		}
		current.NumVerses = len(current.Verses)
		chapters = append(chapters, *current)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapters found")
	}
	return chapters, nil
}

// NormalizeWords lowercases the text, strips every character that is
// not a word character, whitespace, or apostrophe, and splits on
// whitespace. Apostrophes survive so "god's" stays one word.
func NormalizeWords(text string) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), "")
	return strings.Fields(cleaned)
}
