package moderation

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"
	"lessons/backend/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	lessons map[uint]*models.Lesson
	reports []*models.Report
	nextID  uint
}

func newMemRepo(lessons ...*models.Lesson) *memRepo {
	m := &memRepo{lessons: map[uint]*models.Lesson{}}
	for _, l := range lessons {
		m.lessons[l.ID] = l
	}
	return m
}

func (m *memRepo) FindLesson(_ context.Context, id uint) (*models.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lessons[id]
	if !ok {
		return nil, errs.NotFound("lesson not found")
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) FlagAndAppend(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[r.LessonID].IsFlagged = true
	m.nextID++
	r.ID = m.nextID
	cp := *r
	m.reports = append(m.reports, &cp)
	return nil
}

func (m *memRepo) FindReport(_ context.Context, id uint) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errs.NotFound("report not found")
}

func (m *memRepo) MarkReviewed(_ context.Context, id uint, reviewer string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id && r.Status == models.ReportPending {
			r.Status = models.ReportReviewed
			r.ReviewedBy = reviewer
			r.ReviewedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) MarkLessonReviewed(_ context.Context, lessonID uint, reviewer string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reports {
		if r.LessonID == lessonID && r.Status == models.ReportPending {
			r.Status = models.ReportReviewed
			r.ReviewedBy = reviewer
			r.ReviewedAt = &at
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ListForLesson(_ context.Context, lessonID uint) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Report
	for _, r := range m.reports {
		if r.LessonID == lessonID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteForLesson(_ context.Context, lessonID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.reports[:0]
	var n int64
	for _, r := range m.reports {
		if r.LessonID == lessonID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.reports = kept
	return n, nil
}

func (m *memRepo) Flagged(_ context.Context) ([]models.FlaggedLesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byLesson := map[uint]*models.FlaggedLesson{}
	for _, r := range m.reports {
		f, ok := byLesson[r.LessonID]
		if !ok {
			l := m.lessons[r.LessonID]
			f = &models.FlaggedLesson{LessonID: l.ID, Title: l.Title, OwnerEmail: l.OwnerEmail}
			byLesson[r.LessonID] = f
		}
		f.ReportCount++
		if r.Status == models.ReportPending {
			f.PendingCount++
		}
	}
	out := make([]models.FlaggedLesson, 0, len(byLesson))
	for _, f := range byLesson {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportCount > out[j].ReportCount })
	return out, nil
}

var (
	reporter = &policy.Principal{Email: "a@x.com", Role: models.RoleUser}
	admin    = &policy.Principal{Email: "admin@x.com", Role: models.RoleAdmin}
)

func publicLesson(id uint) *models.Lesson {
	return &models.Lesson{ID: id, Title: "Lesson", OwnerEmail: "owner@x.com", Privacy: models.PrivacyPublic}
}

func TestReportFlagsAndAppends(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(publicLesson(1))
	s := NewService(repo)

	r1, err := s.Report(ctx, reporter, 1, "misleading")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, r1.Status)

	l, _ := repo.FindLesson(ctx, 1)
	assert.True(t, l.IsFlagged)

	_, err = s.Report(ctx, reporter, 1, "still misleading")
	require.NoError(t, err)

	l, _ = repo.FindLesson(ctx, 1)
	assert.True(t, l.IsFlagged)
	reports, err := s.ReportsForLesson(ctx, admin, 1)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestReportValidation(t *testing.T) {
	ctx := context.Background()
	private := publicLesson(2)
	private.Privacy = models.PrivacyPrivate
	s := NewService(newMemRepo(publicLesson(1), private))

	_, err := s.Report(ctx, nil, 1, "spam")
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))

	_, err = s.Report(ctx, reporter, 1, "   ")
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	_, err = s.Report(ctx, reporter, 99, "spam")
	assert.True(t, errs.IsKind(err, errs.KindNotFound))

	_, err = s.Report(ctx, reporter, 2, "spam")
	assert.True(t, errs.IsKind(err, errs.KindForbidden))
}

func TestReviewIsOneWay(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(publicLesson(1)))
	r, err := s.Report(ctx, reporter, 1, "offensive")
	require.NoError(t, err)

	_, err = s.Review(ctx, reporter, r.ID)
	assert.True(t, errs.IsKind(err, errs.KindForbidden))

	reviewed, err := s.Review(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, reviewed.Status)
	assert.Equal(t, admin.Email, reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	_, err = s.Review(ctx, admin, r.ID)
	assert.True(t, errs.IsKind(err, errs.KindConflict))

	_, err = s.Review(ctx, admin, 404)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestReviewAllAndDismiss(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(publicLesson(1), publicLesson(2))
	s := NewService(repo)
	for i := 0; i < 3; i++ {
		_, err := s.Report(ctx, reporter, 1, "spam")
		require.NoError(t, err)
	}
	_, err := s.Report(ctx, reporter, 2, "spam")
	require.NoError(t, err)

	n, err := s.ReviewAllForLesson(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	flagged, err := s.FlaggedLessons(ctx, admin)
	require.NoError(t, err)
	require.Len(t, flagged, 2)
	assert.Equal(t, uint(1), flagged[0].LessonID)
	assert.Equal(t, int64(3), flagged[0].ReportCount)
	assert.Equal(t, int64(0), flagged[0].PendingCount)

	deleted, err := s.DismissReports(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	l, _ := repo.FindLesson(ctx, 1)
	assert.True(t, l.IsFlagged, "dismissing reports never clears the flag")

	_, err = s.FlaggedLessons(ctx, reporter)
	assert.True(t, errs.IsKind(err, errs.KindForbidden))
}

func TestStateMachine(t *testing.T) {
	next, err := NextFlag(FlagClean, EventReport)
	require.NoError(t, err)
	assert.Equal(t, FlagFlagged, next)

	next, err = NextFlag(FlagFlagged, EventReport)
	require.NoError(t, err)
	assert.Equal(t, FlagFlagged, next)

	_, err = NextFlag(FlagFlagged, EventReview)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.True(t, CanTransitionReport(models.ReportPending, models.ReportReviewed))
	assert.False(t, CanTransitionReport(models.ReportReviewed, models.ReportPending))

	_, err = NextReport(models.ReportReviewed, EventReview)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, FlagClean, FlagState(&models.Lesson{}))
	assert.Equal(t, FlagFlagged, FlagState(&models.Lesson{IsFlagged: true}))
}
