package models

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type ContributorCount struct {
	Email   string `json:"email"`
	Lessons int64  `json:"lessons"`
}

type PlatformAnalytics struct {
	TotalUsers        int64              `json:"totalUsers"`
	PremiumUsers      int64              `json:"premiumUsers"`
	TotalLessons      int64              `json:"totalLessons"`
	PublicLessons     int64              `json:"publicLessons"`
	PrivateLessons    int64              `json:"privateLessons"`
	FlaggedLessons    int64              `json:"flaggedLessons"`
	PendingReports    int64              `json:"pendingReports"`
	TotalFavorites    int64              `json:"totalFavorites"`
	TotalLikes        int64              `json:"totalLikes"`
	Revenue           int64              `json:"revenue"` // minor units
	LessonsByCategory []CategoryCount    `json:"lessonsByCategory"`
	TopContributors   []ContributorCount `json:"topContributors"`
}

// All lists every table AutoMigrate manages.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Lesson{},
		&Reaction{},
		&Report{},
		&Payment{},
		&Comment{},
	}
}
