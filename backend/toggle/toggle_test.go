package toggle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lessons/backend/errs"
	"lessons/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo enforces the unique key under a mutex, like a unique index would.
type memRepo struct {
	mu   sync.Mutex
	rows map[Key]models.Reaction
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[Key]models.Reaction{}}
}

func (m *memRepo) DeleteByKey(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[key]; !ok {
		return false, nil
	}
	delete(m.rows, key)
	return true, nil
}

func (m *memRepo) Insert(_ context.Context, rel *models.Reaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := Key{Kind: rel.Kind, LessonID: rel.LessonID, Email: rel.UserEmail}
	if _, ok := m.rows[key]; ok {
		return ErrDuplicate
	}
	m.rows[key] = *rel
	return nil
}

func (m *memRepo) Exists(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[key]
	return ok, nil
}

func (m *memRepo) Count(_ context.Context, kind string, lessonID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.rows {
		if k.Kind == kind && k.LessonID == lessonID {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ListByUser(_ context.Context, kind, email string, filter ListFilter) ([]models.Reaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reaction
	for k, r := range m.rows {
		if k.Kind != kind || k.Email != email {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func TestToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newMemRepo())
	key := Key{Kind: models.ReactionFavorite, LessonID: 1, Email: "a@x.com"}

	for _, want := range []Action{Added, Removed, Added} {
		got, err := s.Toggle(ctx, key, Payload{Category: "Career"})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	n, err := s.Count(ctx, models.ReactionFavorite, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestToggleKindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newMemRepo())

	fav := Key{Kind: models.ReactionFavorite, LessonID: 1, Email: "a@x.com"}
	like := Key{Kind: models.ReactionLike, LessonID: 1, Email: "a@x.com"}

	got, err := s.Toggle(ctx, fav, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Added, got)

	got, err = s.Toggle(ctx, like, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Added, got)

	has, err := s.Has(ctx, fav)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestToggleConcurrentNeverDoubleAdds(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := NewStore(repo)
	key := Key{Kind: models.ReactionLike, LessonID: 7, Email: "a@x.com"}

	const workers = 50
	type outcome struct {
		action Action
		err    error
	}
	results := make(chan outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Toggle(ctx, key, Payload{})
			results <- outcome{action: a, err: err}
		}()
	}
	wg.Wait()
	close(results)

	var added, removed int
	for o := range results {
		if o.err != nil {
			// Heavy contention may exhaust the retry budget; that must
			// surface as a conflict and never as a second "added".
			assert.True(t, errs.IsKind(o.err, errs.KindConflict), o.err)
			continue
		}
		if o.action == Added {
			added++
		} else {
			removed++
		}
	}
	assert.Greater(t, added+removed, 0)
	diff := added - removed
	assert.Contains(t, []int{0, 1}, diff)

	has, err := s.Has(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, diff == 1, has)
}

// racyRepo simulates a concurrent insert landing between our delete and
// insert.
type racyRepo struct {
	*memRepo
	races int
}

func (r *racyRepo) Insert(ctx context.Context, rel *models.Reaction) error {
	if r.races > 0 {
		r.races--
		_ = r.memRepo.Insert(ctx, rel)
		return ErrDuplicate
	}
	return r.memRepo.Insert(ctx, rel)
}

func TestToggleRetriesAfterLostInsertRace(t *testing.T) {
	repo := &racyRepo{memRepo: newMemRepo(), races: 1}
	s := NewStore(repo)
	key := Key{Kind: models.ReactionFavorite, LessonID: 1, Email: "a@x.com"}

	got, err := s.Toggle(context.Background(), key, Payload{})
	require.NoError(t, err)
	assert.Equal(t, Removed, got)
}

type alwaysDuplicate struct{ *memRepo }

func (alwaysDuplicate) Insert(context.Context, *models.Reaction) error { return ErrDuplicate }

func TestToggleGivesUpWithConflict(t *testing.T) {
	s := NewStore(alwaysDuplicate{newMemRepo()})
	_, err := s.Toggle(context.Background(), Key{Kind: models.ReactionLike, LessonID: 1, Email: "a@x.com"}, Payload{})
	assert.True(t, errs.IsKind(err, errs.KindConflict))
}

type brokenRepo struct{ *memRepo }

func (brokenRepo) DeleteByKey(context.Context, Key) (bool, error) {
	return false, errors.New("connection reset")
}

func TestTogglePropagatesStoreErrors(t *testing.T) {
	s := NewStore(brokenRepo{newMemRepo()})
	_, err := s.Toggle(context.Background(), Key{Kind: models.ReactionLike, LessonID: 1, Email: "a@x.com"}, Payload{})
	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestToggleValidatesKey(t *testing.T) {
	s := NewStore(newMemRepo())
	_, err := s.Toggle(context.Background(), Key{Kind: "bookmark", Email: " "}, Payload{})

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.Len(t, e.Fields, 3)

	_, err = s.Count(context.Background(), "bookmark", 1)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestListByUserFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newMemRepo())
	_, err := s.Toggle(ctx, Key{Kind: models.ReactionFavorite, LessonID: 1, Email: "a@x.com"}, Payload{Category: "Career"})
	require.NoError(t, err)
	_, err = s.Toggle(ctx, Key{Kind: models.ReactionFavorite, LessonID: 2, Email: "a@x.com"}, Payload{Category: "Health"})
	require.NoError(t, err)

	all, err := s.ListByUser(ctx, models.ReactionFavorite, "a@x.com", ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	career, err := s.ListByUser(ctx, models.ReactionFavorite, "a@x.com", ListFilter{Category: "Career"})
	require.NoError(t, err)
	require.Len(t, career, 1)
	assert.Equal(t, uint(1), career[0].LessonID)
}
