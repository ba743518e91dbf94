package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/bible-concord-api/internal/models"
	"github.com/bible-concord-api/internal/repository"
)

// GroupService manages curated word groups. Group names and member
// words are lowercased on the way in; identity is case-insensitive.
type GroupService struct {
	groups repository.GroupRepository
	words  repository.WordRepository
}

// NewGroupService creates a new group service.
func NewGroupService(groups repository.GroupRepository, words repository.WordRepository) *GroupService {
	return &GroupService{groups: groups, words: words}
}

// Create adds a new empty group.
func (s *GroupService) Create(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("group name is required: %w", models.ErrInvalid)
	}
	if err := s.groups.Create(ctx, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("group %s added successfully", name), nil
}

// List returns all group names.
func (s *GroupService) List(ctx context.Context) ([]string, error) {
	return s.groups.Names(ctx)
}

// Words returns the member words of a group.
func (s *GroupService) Words(ctx context.Context, name string) ([]string, error) {
	return s.groups.Words(ctx, strings.ToLower(name))
}

// AddWord adds an existing dictionary word to a group.
func (s *GroupService) AddWord(ctx context.Context, name, word string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	word = strings.ToLower(strings.TrimSpace(word))
	if name == "" || word == "" {
		return "", fmt.Errorf("group name and word are required: %w", models.ErrInvalid)
	}
	if err := s.groups.AddWord(ctx, name, word); err != nil {
		return "", err
	}
	return fmt.Sprintf("word %s was added to group %s successfully", word, name), nil
}

// OccurrenceIndex returns every member word's occurrence coordinates.
func (s *GroupService) OccurrenceIndex(ctx context.Context, name string) (map[string][]models.Occurrence, error) {
	return s.groups.OccurrenceIndex(ctx, strings.ToLower(name))
}

// Delete removes a group; member words stay in the dictionary.
func (s *GroupService) Delete(ctx context.Context, name string) error {
	return s.groups.Delete(ctx, strings.ToLower(name))
}
