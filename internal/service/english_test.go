package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
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

// fakeEnglishRepo is an in-memory EnglishArticleRepository.
type fakeEnglishRepo struct {
	mu           sync.Mutex
	articles     []*domain.EnglishArticle
	listCalls    int
	suggestCalls int
}

func (f *fakeEnglishRepo) find(id string) (*domain.EnglishArticle, error) {
	for _, a := range f.articles {
		if a.ID.Hex() == id {
			return a, nil
		}
	}
	return nil, domain.ErrArticleNotFound
}

func (f *fakeEnglishRepo) Create(ctx context.Context, article *domain.EnglishArticle) (*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if article.ID.IsZero() {
		article.ID = primitive.NewObjectID()
	}
	f.articles = append(f.articles, article)
	return article, nil
}

func (f *fakeEnglishRepo) GetByID(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return nil, err
	}
	copied := *a
	return &copied, nil
}

func (f *fakeEnglishRepo) Update(ctx context.Context, id string, patch *domain.EnglishArticle) (*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return nil, err
	}
	patch.ID = a.ID
	*a = *patch
	copied := *a
	return &copied, nil
}

func (f *fakeEnglishRepo) Delete(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.articles {
		if a.ID.Hex() == id {
			f.articles = append(f.articles[:i], f.articles[i+1:]...)
			return a, nil
		}
	}
	return nil, domain.ErrArticleNotFound
}

func (f *fakeEnglishRepo) List(ctx context.Context, page, limit int) ([]*domain.EnglishArticle, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	matched := make([]*domain.EnglishArticle, len(f.articles))
	copy(matched, f.articles)
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return pageOfEnglish(matched, page, limit), int64(len(matched)), nil
}

func (f *fakeEnglishRepo) ListByCategory(ctx context.Context, category string, page, limit int) ([]*domain.EnglishArticle, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var matched []*domain.EnglishArticle
	for _, a := range f.articles {
		if a.Category == category {
			matched = append(matched, a)
		}
	}
	return pageOfEnglish(matched, page, limit), int64(len(matched)), nil
}

func (f *fakeEnglishRepo) SuggestHeadlines(ctx context.Context, query string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls++
	var out []string
	for _, a := range f.articles {
		if strings.Contains(strings.ToLower(a.Headline), strings.ToLower(query)) {
			out = append(out, a.Headline)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEnglishRepo) IncrementViews(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return nil, err
	}
	a.Views++
	copied := *a
	return &copied, nil
}

func (f *fakeEnglishRepo) IncrementShares(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return nil, err
	}
	a.ShareCount++
	copied := *a
	return &copied, nil
}

func (f *fakeEnglishRepo) DistinctLocations(ctx context.Context) ([]interface{}, error) {
	return []interface{}{}, nil
}

func (f *fakeEnglishRepo) TopByViews(ctx context.Context, n int, views repository.ViewsRange) ([]*domain.EnglishArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*domain.EnglishArticle
	for _, a := range f.articles {
		if views.Min > 0 && a.Views < views.Min {
			continue
		}
		if views.Max > 0 && a.Views >= views.Max {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Views != matched[j].Views {
			return matched[i].Views > matched[j].Views
		}
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})
	if len(matched) > n {
		matched = matched[:n]
	}
	return matched, nil
}

func (f *fakeEnglishRepo) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		if a.LastTrendingUpdate.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnglishRepo) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		for _, id := range ids {
			if a.ID == id {
				a.LastTrendingUpdate = at
			}
		}
	}
	return nil
}

func pageOfEnglish(articles []*domain.EnglishArticle, page, limit int) []*domain.EnglishArticle {
	start := (page - 1) * limit
	if start >= len(articles) {
		return nil
	}
	end := start + limit
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}

func newTestEnglishService(t *testing.T) (*EnglishService, *fakeEnglishRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := cache.NewClientFromRedis(rdb, logger.NewNop())

	repo := &fakeEnglishRepo{}
	svc := NewEnglishService(repo, client, testConfig(), logger.NewNop())
	return svc, repo, mr
}

func seedEnglish(repo *fakeEnglishRepo, headline, category string, views int64) *domain.EnglishArticle {
	a := &domain.EnglishArticle{
		ID:                 primitive.NewObjectID(),
		Headline:           headline,
		Content:            "body",
		Category:           category,
		Views:              views,
		LastTrendingUpdate: time.Now(),
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	repo.articles = append(repo.articles, a)
	return a
}

func TestEnglishCreateValidatesCategory(t *testing.T) {
	svc, _, _ := newTestEnglishService(t)

	_, err := svc.Create(context.Background(), &domain.EnglishCreateRequest{
		Headline: "Bad category",
		Content:  "body",
		Category: "gossip",
	})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestEnglishCreateStoresArticle(t *testing.T) {
	svc, repo, _ := newTestEnglishService(t)

	created, err := svc.Create(context.Background(), &domain.EnglishCreateRequest{
		Headline: "Everest season opens",
		Content:  "body",
		Category: "mountaineering",
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Len(t, repo.articles, 1)
}

func TestEnglishListCachesResult(t *testing.T) {
	svc, repo, _ := newTestEnglishService(t)
	seedEnglish(repo, "First", "politics", 0)
	ctx := context.Background()

	_, cached, err := svc.List(ctx, 1, 12)
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.List(ctx, 1, 12)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, repo.listCalls)
}

func TestEnglishTrendingExcludesRunawayCounters(t *testing.T) {
	svc, repo, _ := newTestEnglishService(t)

	seedEnglish(repo, "Normal", "politics", 500)
	seedEnglish(repo, "Runaway", "politics", 5000)
	seedEnglish(repo, "Unseen", "politics", 0)

	payload, _, err := svc.Trending(context.Background())
	require.NoError(t, err)

	var top []*domain.EnglishArticle
	require.NoError(t, json.Unmarshal(payload.Data, &top))
	require.Len(t, top, 1)
	assert.Equal(t, "Normal", top[0].Headline,
		"the fresh ranking keeps only articles inside the views bounds")
}

func TestEnglishSuggestSkipsEmptyQuery(t *testing.T) {
	svc, repo, _ := newTestEnglishService(t)
	seedEnglish(repo, "Everest season opens", "mountaineering", 0)

	headlines, err := svc.SuggestHeadlines(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, headlines)
	assert.Equal(t, 0, repo.suggestCalls)

	headlines, err = svc.SuggestHeadlines(context.Background(), "everest")
	require.NoError(t, err)
	assert.Equal(t, []string{"Everest season opens"}, headlines)
}

func TestEnglishUpdateInvalidatesDetail(t *testing.T) {
	svc, repo, _ := newTestEnglishService(t)
	a := seedEnglish(repo, "Before", "politics", 0)
	ctx := context.Background()

	_, _, err := svc.GetByID(ctx, a.ID.Hex())
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID.Hex(), &domain.EnglishUpdateRequest{Headline: "After"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		payload, _, err := svc.GetByID(ctx, a.ID.Hex())
		if err != nil {
			return false
		}
		var got domain.EnglishArticle
		if err := json.Unmarshal(payload.Data, &got); err != nil {
			return false
		}
		return got.Headline == "After"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEnglishIncrementViewsIsReadable(t *testing.T) {
	svc, repo, _ := newTestEnglishService(t)
	a := seedEnglish(repo, "Counted", "politics", 0)
	ctx := context.Background()

	_, _, err := svc.TotalViews(ctx, a.ID.Hex())
	require.NoError(t, err)

	_, err = svc.IncrementViews(ctx, a.ID.Hex())
	require.NoError(t, err)

	payload, cached, err := svc.TotalViews(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.JSONEq(t, `{"views":1}`, string(payload.Data))
}
