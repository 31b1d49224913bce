package store

import (
	"context"
	"fmt"

	"lessons/backend/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const topContributors = 5

type Analytics struct {
	db *gorm.DB
}

func NewAnalytics(db *gorm.DB) *Analytics {
	return &Analytics{db: db}
}

// Platform runs the independent counters concurrently.
func (r *Analytics) Platform(ctx context.Context) (*models.PlatformAnalytics, error) {
	var out models.PlatformAnalytics
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := r.db.WithContext(ctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&out.TotalUsers, &models.User{}, "")
	count(&out.PremiumUsers, &models.User{}, "is_premium = ?", true)
	count(&out.TotalLessons, &models.Lesson{}, "")
	count(&out.PublicLessons, &models.Lesson{}, "privacy = ?", models.PrivacyPublic)
	count(&out.PrivateLessons, &models.Lesson{}, "privacy = ?", models.PrivacyPrivate)
	count(&out.FlaggedLessons, &models.Lesson{}, "is_flagged = ?", true)
	count(&out.PendingReports, &models.Report{}, "status = ?", models.ReportPending)
	count(&out.TotalFavorites, &models.Reaction{}, "kind = ?", models.ReactionFavorite)
	count(&out.TotalLikes, &models.Reaction{}, "kind = ?", models.ReactionLike)

	g.Go(func() error {
		return r.db.WithContext(ctx).Model(&models.Payment{}).
			Select("COALESCE(SUM(amount), 0)").Scan(&out.Revenue).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Model(&models.Lesson{}).
			Select("category, COUNT(*) AS count").
			Group("category").Order("count DESC, category ASC").
			Scan(&out.LessonsByCategory).Error
	})
	g.Go(func() error {
		return r.db.WithContext(ctx).Model(&models.Lesson{}).
			Select("owner_email AS email, COUNT(*) AS lessons").
			Group("owner_email").Order("lessons DESC, email ASC").Limit(topContributors).
			Scan(&out.TopContributors).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("platform analytics: %w", err)
	}
	if out.LessonsByCategory == nil {
		out.LessonsByCategory = []models.CategoryCount{}
	}
	if out.TopContributors == nil {
		out.TopContributors = []models.ContributorCount{}
	}
	return &out, nil
}
