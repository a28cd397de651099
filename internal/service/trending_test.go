package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Khadka1996/everestnews-server/internal/cache"
	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/internal/repository"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// recordingSource captures the calls the engine makes.
type recordingSource struct {
	stale      bool
	data       interface{}
	ids        []primitive.ObjectID
	topCalls   []repository.ViewsRange
	markedIDs  []primitive.ObjectID
	markedAt   time.Time
	markCalls  int
	probeCalls int
}

func (s *recordingSource) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
	s.probeCalls++
	return s.stale, nil
}

func (s *recordingSource) TopTrending(ctx context.Context, n int, views repository.ViewsRange) (interface{}, []primitive.ObjectID, error) {
	s.topCalls = append(s.topCalls, views)
	return s.data, s.ids, nil
}

func (s *recordingSource) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	s.markCalls++
	s.markedIDs = ids
	s.markedAt = at
	return nil
}

func newTestEngine(t *testing.T, source trendingSource) (*TrendingEngine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := cache.NewClientFromRedis(rdb, logger.NewNop())
	read := cache.NewReadThrough(client, logger.NewNop())

	engine := NewTrendingEngine(
		source, read, "articles:trending",
		time.Hour, time.Minute,
		9, 7*24*time.Hour,
		repository.ViewsRange{Min: 1},
		logger.NewNop(),
	)
	return engine, mr
}

func TestTrendingStaleRanksWithoutFilterAndMarks(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	source := &recordingSource{stale: true, data: []string{"a", "b"}, ids: ids}
	engine, _ := newTestEngine(t, source)

	_, cached, err := engine.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	require.Len(t, source.topCalls, 1)
	assert.Equal(t, repository.ViewsRange{}, source.topCalls[0], "a stale probe drops the views filter")

	assert.Equal(t, 1, source.markCalls)
	assert.Equal(t, ids, source.markedIDs, "exactly the ranked articles get the marker")
	assert.False(t, source.markedAt.IsZero())
}

func TestTrendingFreshKeepsViewsFilter(t *testing.T) {
	source := &recordingSource{stale: false, data: []string{"a"}, ids: []primitive.ObjectID{primitive.NewObjectID()}}
	engine, _ := newTestEngine(t, source)

	_, _, err := engine.Get(context.Background())
	require.NoError(t, err)

	require.Len(t, source.topCalls, 1)
	assert.Equal(t, repository.ViewsRange{Min: 1}, source.topCalls[0])
	assert.Equal(t, 0, source.markCalls, "no marking when nothing is stale")
}

func TestTrendingServedFromCache(t *testing.T) {
	source := &recordingSource{stale: false, data: []string{"a"}, ids: []primitive.ObjectID{primitive.NewObjectID()}}
	engine, _ := newTestEngine(t, source)
	ctx := context.Background()

	_, cached, err := engine.Get(ctx)
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = engine.Get(ctx)
	require.NoError(t, err)
	assert.True(t, cached)

	assert.Equal(t, 1, source.probeCalls, "a cache hit skips the staleness probe")
	assert.Len(t, source.topCalls, 1)
}

func TestTrendingOrderDeterministic(t *testing.T) {
	// Equal view counts break ties on ascending ID, so the ranking is
	// stable across recomputations.
	repo := &fakeArticleRepo{}
	idA, _ := primitive.ObjectIDFromHex("000000000000000000000001")
	idB, _ := primitive.ObjectIDFromHex("000000000000000000000002")
	idC, _ := primitive.ObjectIDFromHex("000000000000000000000003")
	idD, _ := primitive.ObjectIDFromHex("000000000000000000000004")

	for _, fixture := range []struct {
		id    primitive.ObjectID
		views int64
	}{
		{idB, 10}, {idA, 10}, {idC, 7}, {idD, 3},
	} {
		repo.articles = append(repo.articles, &domain.Article{
			ID:                 fixture.id,
			Headline:           fixture.id.Hex(),
			Views:              fixture.views,
			Status:             domain.StatusPublished,
			LastTrendingUpdate: time.Now(),
		})
	}

	engine, _ := newTestEngine(t, primaryTrendingSource{repo: repo})

	payload, _, err := engine.Get(context.Background())
	require.NoError(t, err)

	var top []*domain.TrendingArticle
	require.NoError(t, json.Unmarshal(payload.Data, &top))
	require.Len(t, top, 4)
	assert.Equal(t, []primitive.ObjectID{idA, idB, idC, idD},
		[]primitive.ObjectID{top[0].ID, top[1].ID, top[2].ID, top[3].ID})
}

func TestTrendingStaleMarkTopNOnly(t *testing.T) {
	repo := &fakeArticleRepo{}
	stale := time.Now().Add(-30 * 24 * time.Hour)

	// Eleven articles, all stale; only the top nine may get the fresh
	// marker.
	for i := 0; i < 11; i++ {
		repo.articles = append(repo.articles, &domain.Article{
			ID:                 primitive.NewObjectID(),
			Views:              int64(100 - i),
			Status:             domain.StatusPublished,
			LastTrendingUpdate: stale,
		})
	}

	engine, _ := newTestEngine(t, primaryTrendingSource{repo: repo})

	_, _, err := engine.Get(context.Background())
	require.NoError(t, err)

	fresh := 0
	for _, a := range repo.articles {
		if a.LastTrendingUpdate.After(stale) {
			fresh++
		}
	}
	assert.Equal(t, 9, fresh)
}
