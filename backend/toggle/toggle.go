// Package toggle implements at-most-one-membership relations ("favorited by",
// "liked by") with add/remove-by-presence semantics.
package toggle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"
)

type Action string

const (
	Added   Action = "added"
	Removed Action = "removed"
)

const defaultMaxAttempts = 3

// ErrDuplicate is returned by Repository.Insert when the unique key already
// exists.
var ErrDuplicate = errors.New("relation already exists")

type Key struct {
	Kind     string
	LessonID uint
	Email    string
}

// Payload is denormalized onto the relation at insert time.
type Payload struct {
	LessonTitle   string
	Category      string
	EmotionalTone string
}

// ListFilter narrows a user's relations by the denormalized lesson fields.
type ListFilter struct {
	Category string
	Tone     string
}

// Repository is the persistence port. Implementations must enforce
// uniqueness of Key and report violations as ErrDuplicate.
type Repository interface {
	DeleteByKey(ctx context.Context, key Key) (bool, error)
	Insert(ctx context.Context, rel *models.Reaction) error
	Exists(ctx context.Context, key Key) (bool, error)
	Count(ctx context.Context, kind string, lessonID uint) (int64, error)
	ListByUser(ctx context.Context, kind, email string, filter ListFilter) ([]models.Reaction, error)
}

type Store struct {
	repo        Repository
	now         func() time.Time
	maxAttempts int
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now, maxAttempts: defaultMaxAttempts}
}

// Toggle removes the relation when present and inserts it otherwise.
//
// Presence is tested by deleting, so removal never races with a read. An
// insert that loses a race against a concurrent toggle surfaces as
// ErrDuplicate; the sequence is then replayed so the outcome matches the
// serial order the store observed.
func (s *Store) Toggle(ctx context.Context, key Key, payload Payload) (Action, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		deleted, err := s.repo.DeleteByKey(ctx, key)
		if err != nil {
			return "", fmt.Errorf("delete %s relation: %w", key.Kind, err)
		}
		if deleted {
			return Removed, nil
		}

		err = s.repo.Insert(ctx, &models.Reaction{
			Kind:          key.Kind,
			LessonID:      key.LessonID,
			UserEmail:     key.Email,
			LessonTitle:   payload.LessonTitle,
			Category:      payload.Category,
			EmotionalTone: payload.EmotionalTone,
			CreatedAt:     s.now().UTC(),
		})
		if err == nil {
			return Added, nil
		}
		if !errors.Is(err, ErrDuplicate) {
			return "", fmt.Errorf("insert %s relation: %w", key.Kind, err)
		}
	}
	return "", errs.Conflict(fmt.Sprintf("%s toggle did not settle after %d attempts", key.Kind, s.maxAttempts))
}

func (s *Store) Has(ctx context.Context, key Key) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, key)
}

func (s *Store) Count(ctx context.Context, kind string, lessonID uint) (int64, error) {
	if !models.ValidReactionKind(kind) {
		return 0, errs.Validation("unknown relation kind", map[string]string{"kind": kind})
	}
	return s.repo.Count(ctx, kind, lessonID)
}

func (s *Store) ListByUser(ctx context.Context, kind, email string, filter ListFilter) ([]models.Reaction, error) {
	if !models.ValidReactionKind(kind) {
		return nil, errs.Validation("unknown relation kind", map[string]string{"kind": kind})
	}
	return s.repo.ListByUser(ctx, kind, email, filter)
}

func validateKey(key Key) error {
	fields := map[string]string{}
	if !models.ValidReactionKind(key.Kind) {
		fields["kind"] = "must be favorite or like"
	}
	if key.LessonID == 0 {
		fields["lessonId"] = "required"
	}
	if strings.TrimSpace(key.Email) == "" {
		fields["email"] = "required"
	}
	if len(fields) > 0 {
		return errs.Validation("invalid relation key", fields)
	}
	return nil
}
