package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"

	"gorm.io/gorm"
)

type Reports struct {
	db      *gorm.DB
	lessons *Lessons
}

func NewReports(db *gorm.DB, lessons *Lessons) *Reports {
	return &Reports{db: db, lessons: lessons}
}

func (r *Reports) FindLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	return r.lessons.Find(ctx, id)
}

// FlagAndAppend sets the flag and stores the report in one transaction.
func (r *Reports) FlagAndAppend(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Lesson{}).Where("id = ?", report.LessonID).UpdateColumn("is_flagged", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("lesson not found")
		}
		return tx.Create(report).Error
	})
}

func (r *Reports) FindReport(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, notFound(err, "report")
	}
	return &report, nil
}

func (r *Reports) MarkReviewed(ctx context.Context, id uint, reviewer string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportPending).
		Updates(map[string]interface{}{
			"status":      models.ReportReviewed,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Reports) MarkLessonReviewed(ctx context.Context, lessonID uint, reviewer string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("lesson_id = ? AND status = ?", lessonID, models.ReportPending).
		Updates(map[string]interface{}{
			"status":      models.ReportReviewed,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("review reports of lesson %d: %w", lessonID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Reports) ListForLesson(ctx context.Context, lessonID uint) ([]models.Report, error) {
	var out []models.Report
	err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Order("created_at DESC, id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reports of lesson %d: %w", lessonID, err)
	}
	return out, nil
}

func (r *Reports) DeleteForLesson(ctx context.Context, lessonID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Delete(&models.Report{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete reports of lesson %d: %w", lessonID, res.Error)
	}
	return res.RowsAffected, nil
}

// Flagged groups reports per lesson in SQL, most reported first.
func (r *Reports) Flagged(ctx context.Context) ([]models.FlaggedLesson, error) {
	rows, err := r.db.WithContext(ctx).Model(&models.Report{}).
		Select("lesson_id, COUNT(*), SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), MAX(created_at)", models.ReportPending).
		Group("lesson_id").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("aggregate reports: %w", err)
	}
	defer rows.Close()

	groups := map[uint]*models.FlaggedLesson{}
	ids := make([]uint, 0)
	for rows.Next() {
		var (
			g      models.FlaggedLesson
			latest interface{}
		)
		if err := rows.Scan(&g.LessonID, &g.ReportCount, &g.PendingCount, &latest); err != nil {
			return nil, fmt.Errorf("scan report group: %w", err)
		}
		if g.LatestReport, err = scanTime(latest); err != nil {
			return nil, fmt.Errorf("latest report of lesson %d: %w", g.LessonID, err)
		}
		groups[g.LessonID] = &g
		ids = append(ids, g.LessonID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate reports: %w", err)
	}
	if len(ids) == 0 {
		return []models.FlaggedLesson{}, nil
	}

	var lessons []models.Lesson
	err = r.db.WithContext(ctx).Select("id", "title", "owner_email", "category").Where("id IN ?", ids).Find(&lessons).Error
	if err != nil {
		return nil, fmt.Errorf("load flagged lessons: %w", err)
	}

	out := make([]models.FlaggedLesson, 0, len(lessons))
	for _, l := range lessons {
		g := groups[l.ID]
		g.Title = l.Title
		g.OwnerEmail = l.OwnerEmail
		g.Category = l.Category
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportCount != out[j].ReportCount {
			return out[i].ReportCount > out[j].ReportCount
		}
		return out[i].LatestReport.After(out[j].LatestReport)
	})
	return out, nil
}

// Layouts SQLite uses for aggregated timestamps; postgres hands back time.Time.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

func scanTime(v interface{}) (time.Time, error) {
	var raw string
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case nil:
		return time.Time{}, nil
	case []byte:
		raw = string(t)
	case string:
		raw = t
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
	for _, layout := range sqliteTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
