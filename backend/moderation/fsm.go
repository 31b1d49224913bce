package moderation

import (
	"errors"

	"lessons/backend/models"
)

const (
	FlagClean   = "clean"
	FlagFlagged = "flagged"
)

var ErrInvalidTransition = errors.New("invalid moderation transition")

type Event string

const (
	EventReport Event = "REPORT"
	EventReview Event = "REVIEW"
)

// FlagState reads the flag bit of a lesson as a state name.
func FlagState(l *models.Lesson) string {
	if l != nil && l.IsFlagged {
		return FlagFlagged
	}
	return FlagClean
}

// NextFlag is one-way: a report flags a clean lesson and leaves a flagged
// one flagged.
func NextFlag(from string, event Event) (string, error) {
	if event != EventReport {
		return from, ErrInvalidTransition
	}
	switch from {
	case FlagClean, FlagFlagged:
		return FlagFlagged, nil
	default:
		return from, ErrInvalidTransition
	}
}

func CanTransitionReport(from, to string) bool {
	return from == models.ReportPending && to == models.ReportReviewed
}

func NextReport(from string, event Event) (string, error) {
	if event != EventReview || !CanTransitionReport(from, models.ReportReviewed) {
		return from, ErrInvalidTransition
	}
	return models.ReportReviewed, nil
}
