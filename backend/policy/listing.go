package policy

import (
	"sort"
	"strconv"
	"strings"

	"lessons/backend/errs"
	"lessons/backend/models"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"

	DefaultPageSize = 12
	MaxPageSize     = 100
)

// ListQuery is a normalized listing request. Filters are orthogonal to the
// visibility decision and are applied after it.
type ListQuery struct {
	Search   string // case-insensitive title substring
	Category string
	Tone     string
	Sort     string
	Page     int
	Limit    int
}

// RawListQuery carries the untouched query-string values.
type RawListQuery struct {
	Search   string
	Category string
	Tone     string
	Sort     string
	Page     string
	Limit    string
}

func ParseListQuery(raw RawListQuery) (ListQuery, error) {
	q := ListQuery{
		Search:   strings.TrimSpace(raw.Search),
		Category: strings.TrimSpace(raw.Category),
		Tone:     strings.TrimSpace(raw.Tone),
		Page:     1,
		Limit:    DefaultPageSize,
	}
	fields := map[string]string{}

	switch s := strings.ToLower(strings.TrimSpace(raw.Sort)); s {
	case "", SortNewest:
		q.Sort = SortNewest
	case SortOldest:
		q.Sort = SortOldest
	default:
		fields["sort"] = "must be newest or oldest"
	}

	if raw.Page != "" {
		n, err := strconv.Atoi(raw.Page)
		if err != nil || n < 1 {
			fields["page"] = "must be a positive integer"
		} else {
			q.Page = n
		}
	}
	if raw.Limit != "" {
		n, err := strconv.Atoi(raw.Limit)
		if err != nil || n < 1 || n > MaxPageSize {
			fields["limit"] = "must be between 1 and " + strconv.Itoa(MaxPageSize)
		} else {
			q.Limit = n
		}
	}

	if len(fields) > 0 {
		return ListQuery{}, errs.Validation("invalid listing query", fields)
	}
	return q, nil
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Matches applies the filters, not the visibility predicate.
func (q ListQuery) Matches(item *models.Lesson) bool {
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.Tone != "" && item.EmotionalTone != q.Tone {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// Less orders a before b under q.Sort.
func (q ListQuery) Less(a, b *models.Lesson) bool {
	if q.Sort == SortOldest {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Filter is the in-memory form of a listing: visibility first, then filters
// and ordering. Pagination is left to the caller.
func Filter(items []models.Lesson, p *Principal, q ListQuery) []models.Lesson {
	out := make([]models.Lesson, 0, len(items))
	for i := range items {
		if IsVisible(&items[i], p) && q.Matches(&items[i]) {
			out = append(out, items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return q.Less(&out[i], &out[j]) })
	return out
}
