package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/parser"
	"github.com/bible-concord-api/internal/repository"
)

// PhraseService stores phrases and locates their occurrences in the
// corpus as contiguous in-verse word runs.
type PhraseService struct {
	phrases repository.PhraseRepository
}

// NewPhraseService creates a new phrase service.
func NewPhraseService(phrases repository.PhraseRepository) *PhraseService {
	return &PhraseService{phrases: phrases}
}

// Add normalizes the phrase, locates every occurrence, and persists
// the phrase with its references only when at least one was found.
func (s *PhraseService) Add(ctx context.Context, text string) (string, error) {
	words := parser.NormalizeWords(text)
	if len(words) == 0 {
		return "", fmt.Errorf("phrase text is required: %w", models.ErrInvalid)
	}
	normalized := strings.Join(words, " ")

	exists, err := s.phrases.Exists(ctx, normalized)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("phrase %s: %w", normalized, models.ErrConflict)
	}

	refs, err := s.Locate(ctx, words)
	if err != nil {
		return "", err
	}
	if len(refs) == 0 {
		return "", fmt.Errorf("phrase %s wasn't found in the text: %w", normalized, models.ErrNotFound)
	}

	if err := s.phrases.Insert(ctx, normalized, refs); err != nil {
		return "", err
	}
	return fmt.Sprintf("phrase %s added successfully", normalized), nil
}

// Locate finds every place where the words occur as a contiguous run
// inside a single verse. Phase one pulls all occurrences of any phrase
// word grouped per verse; a coarse substring filter discards most
// verses cheaply and the consecutive-position check confirms true
// matches. A one-word phrase degenerates to a plain word search.
func (s *PhraseService) Locate(ctx context.Context, words []string) ([]models.Reference, error) {
	rows, err := s.phrases.VerseOccurrences(ctx, words)
	if err != nil {
		return nil, err
	}
	joined := strings.Join(words, " ")

	var refs []models.Reference
	flush := func(verse []models.PositionedWord) {
		if len(verse) < len(words) {
			return
		}
		verseWords := make([]string, len(verse))
		positions := make([]int, len(verse))
		for i, row := range verse {
			verseWords[i] = row.Word
			positions[i] = row.Position
		}
		// Coarse filter: over-inclusive, cheap. The concatenation can
		// contain the phrase across position gaps; the fine filter
		// rejects those.
		if !strings.Contains(strings.Join(verseWords, " "), joined) {
			return
		}
		for _, start := range consecutivePositions(words, verseWords, positions) {
			refs = append(refs, models.Reference{
				BookID:       verse[0].BookID,
				Book:         verse[0].Book,
				Chapter:      verse[0].Chapter,
				Verse:        verse[0].Verse,
				WordPosition: start,
				LineNum:      verse[0].LineNum,
			})
		}
	}

	var current []models.PositionedWord
	for _, row := range rows {
		if len(current) > 0 {
			last := current[len(current)-1]
			if row.BookID != last.BookID || row.Chapter != last.Chapter || row.Verse != last.Verse {
				flush(current)
				current = current[:0]
			}
		}
		current = append(current, row)
	}
	flush(current)
	return refs, nil
}

// consecutivePositions returns the starting word positions of every
// window of the verse's word list that equals the phrase element for
// element with strictly consecutive positions. The position check is
// what rejects same words recurring apart whose concatenation still
// contains the phrase.
func consecutivePositions(phrase, words []string, positions []int) []int {
	var starts []int
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j := range phrase {
			if words[i+j] != phrase[j] {
				match = false
				break
			}
			if j > 0 && positions[i+j] != positions[i+j-1]+1 {
				match = false
				break
			}
		}
		if match {
			starts = append(starts, positions[i])
		}
	}
	return starts
}

// List returns all stored phrase texts.
func (s *PhraseService) List(ctx context.Context) ([]string, error) {
	return s.phrases.Texts(ctx)
}

// References returns the cached coordinates of a stored phrase.
func (s *PhraseService) References(ctx context.Context, text string) ([]models.Reference, error) {
	normalized := strings.Join(parser.NormalizeWords(text), " ")
	if normalized == "" {
		return nil, fmt.Errorf("phrase text is required: %w", models.ErrInvalid)
	}
	return s.phrases.References(ctx, normalized)
}

// Delete removes a stored phrase and its cached references.
func (s *PhraseService) Delete(ctx context.Context, text string) error {
	normalized := strings.Join(parser.NormalizeWords(text), " ")
	if normalized == "" {
		return fmt.Errorf("phrase text is required: %w", models.ErrInvalid)
	}
	return s.phrases.Delete(ctx, normalized)
}
