// Package moderation owns the flag and report lifecycles of lessons.
package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lessons/backend/errs"
	"lessons/backend/models"
	"lessons/backend/policy"
)

const maxReasonLength = 500

// Repository is the persistence port. Lookups of absent rows return an
// errs.KindNotFound error.
type Repository interface {
	FindLesson(ctx context.Context, id uint) (*models.Lesson, error)
	// FlagAndAppend sets the lesson's flag and stores the report as one unit.
	FlagAndAppend(ctx context.Context, report *models.Report) error
	FindReport(ctx context.Context, id uint) (*models.Report, error)
	// MarkReviewed updates the report only while it is still pending and
	// reports whether it did.
	MarkReviewed(ctx context.Context, id uint, reviewer string, at time.Time) (bool, error)
	MarkLessonReviewed(ctx context.Context, lessonID uint, reviewer string, at time.Time) (int64, error)
	ListForLesson(ctx context.Context, lessonID uint) ([]models.Report, error)
	DeleteForLesson(ctx context.Context, lessonID uint) (int64, error)
	Flagged(ctx context.Context) ([]models.FlaggedLesson, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Report flags the lesson and appends a pending report. Reporting an already
// flagged lesson still records a new report.
func (s *Service) Report(ctx context.Context, p *policy.Principal, lessonID uint, reason string) (*models.Report, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	switch {
	case reason == "":
		return nil, errs.Validation("reason is required", map[string]string{"reason": "required"})
	case utf8.RuneCountInString(reason) > maxReasonLength:
		return nil, errs.Validation("reason is too long", map[string]string{"reason": fmt.Sprintf("at most %d characters", maxReasonLength)})
	}

	lesson, err := s.repo.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(lesson, p) {
		return nil, errs.Forbidden("you cannot report a lesson you cannot view")
	}
	if _, err := NextFlag(FlagState(lesson), EventReport); err != nil {
		return nil, errs.Conflict(err.Error())
	}

	report := &models.Report{
		LessonID:      lesson.ID,
		ReporterEmail: p.Email,
		Reason:        reason,
		Status:        models.ReportPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.FlagAndAppend(ctx, report); err != nil {
		return nil, fmt.Errorf("report lesson %d: %w", lessonID, err)
	}
	return report, nil
}

// Review moves one report from pending to reviewed.
func (s *Service) Review(ctx context.Context, p *policy.Principal, reportID uint) (*models.Report, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	report, err := s.repo.FindReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	next, err := NextReport(report.Status, EventReview)
	if err != nil {
		return nil, errs.Conflict(fmt.Sprintf("report %d is already %s", reportID, report.Status))
	}

	at := s.now().UTC()
	ok, err := s.repo.MarkReviewed(ctx, reportID, p.Email, at)
	if err != nil {
		return nil, fmt.Errorf("review report %d: %w", reportID, err)
	}
	if !ok {
		return nil, errs.Conflict(fmt.Sprintf("report %d was reviewed concurrently", reportID))
	}
	report.Status = next
	report.ReviewedBy = p.Email
	report.ReviewedAt = &at
	return report, nil
}

// ReviewAllForLesson marks every pending report of a lesson reviewed.
func (s *Service) ReviewAllForLesson(ctx context.Context, p *policy.Principal, lessonID uint) (int64, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return 0, err
	}
	if _, err := s.repo.FindLesson(ctx, lessonID); err != nil {
		return 0, err
	}
	return s.repo.MarkLessonReviewed(ctx, lessonID, p.Email, s.now().UTC())
}

func (s *Service) ReportsForLesson(ctx context.Context, p *policy.Principal, lessonID uint) ([]models.Report, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.repo.ListForLesson(ctx, lessonID)
}

// DismissReports bulk-deletes a lesson's report group. The flag stays set.
func (s *Service) DismissReports(ctx context.Context, p *policy.Principal, lessonID uint) (int64, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return 0, err
	}
	return s.repo.DeleteForLesson(ctx, lessonID)
}

func (s *Service) FlaggedLessons(ctx context.Context, p *policy.Principal) ([]models.FlaggedLesson, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.repo.Flagged(ctx)
}
