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
	"github.com/Khadka1996/everestnews-server/internal/config"
	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/internal/repository"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// fakeArticleRepo is an in-memory ArticleRepository.
type fakeArticleRepo struct {
	mu        sync.Mutex
	articles  []*domain.Article
	listCalls int
	getCalls  int
}

func (f *fakeArticleRepo) find(id string) (*domain.Article, error) {
	for _, a := range f.articles {
		if a.ID.Hex() == id {
			return a, nil
		}
	}
	return nil, domain.ErrArticleNotFound
}

func (f *fakeArticleRepo) Create(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if article.ID.IsZero() {
		article.ID = primitive.NewObjectID()
	}
	f.articles = append(f.articles, article)
	return article, nil
}

func (f *fakeArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	a, err := f.find(id)
	if err != nil {
		return nil, err
	}
	copied := *a
	return &copied, nil
}

func (f *fakeArticleRepo) Update(ctx context.Context, id string, patch *domain.Article) (*domain.Article, error) {
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

func (f *fakeArticleRepo) Delete(ctx context.Context, id string) (*domain.Article, error) {
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

func (f *fakeArticleRepo) List(ctx context.Context, q *domain.ArticleListQuery) ([]*domain.Article, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	matched := make([]*domain.Article, 0, len(f.articles))
	for _, a := range f.articles {
		if q.Search != "" && !strings.Contains(strings.ToLower(a.Headline), strings.ToLower(q.Search)) {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return pageOf(matched, q.Page, q.Limit), int64(len(matched)), nil
}

func (f *fakeArticleRepo) ListByStatus(ctx context.Context, filter *domain.StatusFilter) ([]*domain.Article, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	matched := make([]*domain.Article, 0, len(f.articles))
	for _, a := range f.articles {
		if string(a.Status) != filter.Status {
			continue
		}
		if len(filter.TagIDs) > 0 && !hasAnyTag(a, filter.TagIDs) {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	return pageOf(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (f *fakeArticleRepo) ListByCategory(ctx context.Context, categoryID primitive.ObjectID, sortField, sortOrder string) ([]*domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*domain.Article, 0, len(f.articles))
	for _, a := range f.articles {
		if a.Category == categoryID {
			copied := *a
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (f *fakeArticleRepo) ListByCategoryWithStatus(ctx context.Context, categoryID primitive.ObjectID, status string, page, limit int) ([]*domain.Article, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*domain.Article, 0, len(f.articles))
	for _, a := range f.articles {
		if a.Category == categoryID && string(a.Status) == status {
			copied := *a
			matched = append(matched, &copied)
		}
	}
	return pageOf(matched, page, limit), int64(len(matched)), nil
}

func (f *fakeArticleRepo) ListByAuthorsWithStatus(ctx context.Context, authorIDs []primitive.ObjectID, status string, page, limit int) ([]*domain.Article, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*domain.Article, 0, len(f.articles))
	for _, a := range f.articles {
		if string(a.Status) != status {
			continue
		}
		for _, want := range authorIDs {
			for _, got := range a.SelectedAuthors {
				if want == got {
					copied := *a
					matched = append(matched, &copied)
				}
			}
		}
	}
	return pageOf(matched, page, limit), int64(len(matched)), nil
}

func (f *fakeArticleRepo) IncrementViews(ctx context.Context, id string) (*domain.Article, error) {
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

func (f *fakeArticleRepo) IncrementShares(ctx context.Context, id string) (*domain.Article, error) {
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

func (f *fakeArticleRepo) DistinctLocations(ctx context.Context) ([]interface{}, error) {
	return []interface{}{}, nil
}

func (f *fakeArticleRepo) TopByViews(ctx context.Context, n int, views repository.ViewsRange) ([]*domain.TrendingArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]*domain.Article, 0, len(f.articles))
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

	top := make([]*domain.TrendingArticle, 0, len(matched))
	for _, a := range matched {
		top = append(top, &domain.TrendingArticle{
			ID:       a.ID,
			Headline: a.Headline,
			Views:    a.Views,
			Status:   a.Status,
		})
	}
	return top, nil
}

func (f *fakeArticleRepo) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.articles {
		if a.LastTrendingUpdate.Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeArticleRepo) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
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

func (f *fakeArticleRepo) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var promoted int64
	for _, a := range f.articles {
		if a.Status == domain.StatusScheduled && a.PublishDate != nil && !a.PublishDate.After(now) {
			a.Status = domain.StatusPublished
			promoted++
		}
	}
	return promoted, nil
}

func pageOf(articles []*domain.Article, page, limit int) []*domain.Article {
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

func hasAnyTag(a *domain.Article, tagIDs []string) bool {
	for _, want := range tagIDs {
		for _, got := range a.SelectedTags {
			if got.Hex() == want {
				return true
			}
		}
	}
	return false
}

// fakeReferenceRepo is an in-memory ReferenceRepository.
type fakeReferenceRepo struct {
	categories []*domain.Category
	tags       []*domain.Tag
	authors    []*domain.Author
}

func (f *fakeReferenceRepo) CategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (f *fakeReferenceRepo) CategoriesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, c := range f.categories {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeReferenceRepo) TagByName(ctx context.Context, name string) (*domain.Tag, error) {
	for _, t := range f.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, domain.ErrTagNotFound
}

func (f *fakeReferenceRepo) TagsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Tag, error) {
	var out []*domain.Tag
	for _, t := range f.tags {
		for _, id := range ids {
			if t.ID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeReferenceRepo) AuthorsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Author, error) {
	var out []*domain.Author
	for _, a := range f.authors {
		for _, id := range ids {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (f *fakeReferenceRepo) AuthorsByName(ctx context.Context, name string) ([]*domain.Author, error) {
	var out []*domain.Author
	for _, a := range f.authors {
		if strings.Contains(strings.ToLower(a.FullName()), strings.ToLower(name)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			ListingTTL:         5 * time.Minute,
			DetailTTL:          10 * time.Minute,
			DetailWithViewsTTL: 5 * time.Minute,
			TrendingTTL:        time.Hour,
			EnglishTrendingTTL: 30 * time.Minute,
			CounterTTL:         2 * time.Minute,
			RelatedTTL:         10 * time.Minute,
			LocationsTTL:       time.Hour,
			FreshWindow:        time.Minute,
		},
		Trending: config.TrendingConfig{
			Size:            9,
			EnglishSize:     10,
			EnglishMaxViews: 1000,
			RefreshWindow:   7 * 24 * time.Hour,
		},
	}
}

func newTestArticleService(t *testing.T) (*ArticleService, *fakeArticleRepo, *fakeReferenceRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := cache.NewClientFromRedis(rdb, logger.NewNop())

	repo := &fakeArticleRepo{}
	refs := &fakeReferenceRepo{}
	svc := NewArticleService(repo, refs, client, testConfig(), logger.NewNop())
	return svc, repo, refs, mr
}

func seedArticle(repo *fakeArticleRepo, headline string, views int64, status domain.ArticleStatus) *domain.Article {
	a := &domain.Article{
		ID:                 primitive.NewObjectID(),
		Headline:           headline,
		Content:            "body",
		Photos:             []string{"photo.jpg"},
		Views:              views,
		Status:             status,
		LastTrendingUpdate: time.Now(),
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	repo.articles = append(repo.articles, a)
	return a
}

func TestCreateRequiresPhoto(t *testing.T) {
	svc, _, _, _ := newTestArticleService(t)

	_, err := svc.Create(context.Background(), &domain.ArticleCreateRequest{
		Headline: "No photo",
		Content:  "body",
		Category: primitive.NewObjectID().Hex(),
	})
	assert.ErrorIs(t, err, domain.ErrPhotoRequired)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestArticleService(t)

	_, err := svc.Create(context.Background(), &domain.ArticleCreateRequest{
		Headline: "Bad status",
		Content:  "body",
		Photos:   []string{"photo.jpg"},
		Category: primitive.NewObjectID().Hex(),
		Status:   "archived",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateScheduledMustBeFuture(t *testing.T) {
	svc, _, _, _ := newTestArticleService(t)

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err := svc.Create(context.Background(), &domain.ArticleCreateRequest{
		Headline:    "Too late",
		Content:     "body",
		Photos:      []string{"photo.jpg"},
		Category:    primitive.NewObjectID().Hex(),
		Status:      "scheduled",
		PublishDate: past,
	})
	assert.ErrorIs(t, err, domain.ErrScheduleInPast)
}

func TestCreateScheduledKeepsPublishDate(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)

	future := time.Now().Add(time.Hour)
	created, err := svc.Create(context.Background(), &domain.ArticleCreateRequest{
		Headline:    "Tomorrow's news",
		Content:     "body",
		Photos:      []string{"photo.jpg"},
		Category:    primitive.NewObjectID().Hex(),
		Status:      "scheduled",
		PublishDate: future.Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.NotNil(t, created.PublishDate)
	assert.Equal(t, domain.StatusScheduled, created.Status)
	assert.Len(t, repo.articles, 1)
}

func TestCreateDefaultsToDraft(t *testing.T) {
	svc, _, _, _ := newTestArticleService(t)

	created, err := svc.Create(context.Background(), &domain.ArticleCreateRequest{
		Headline: "Untitled",
		Content:  "body",
		Photos:   []string{"photo.jpg"},
		Category: primitive.NewObjectID().Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, created.Status)
}

func TestCreateSanitizesContent(t *testing.T) {
	svc, _, _, _ := newTestArticleService(t)

	created, err := svc.Create(context.Background(), &domain.ArticleCreateRequest{
		Headline: "Markup",
		Content:  `<p>fine</p><script>alert("x")</script>`,
		Photos:   []string{"photo.jpg"},
		Category: primitive.NewObjectID().Hex(),
	})
	require.NoError(t, err)
	assert.NotContains(t, created.Content, "<script>")
	assert.Contains(t, created.Content, "<p>fine</p>")
}

func TestListCachesResult(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	seedArticle(repo, "First", 0, domain.StatusPublished)
	ctx := context.Background()

	query := func() *domain.ArticleListQuery { return &domain.ArticleListQuery{} }

	_, cached, err := svc.List(ctx, query())
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.List(ctx, query())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, repo.listCalls)
}

func TestEquivalentQueriesShareOneEntry(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	seedArticle(repo, "First", 0, domain.StatusPublished)
	ctx := context.Background()

	// Defaults spelled out and defaults left blank must hit the same key.
	_, _, err := svc.List(ctx, &domain.ArticleListQuery{Page: 1, Limit: 20, SortBy: "createdAt", SortOrder: "desc"})
	require.NoError(t, err)

	_, cached, err := svc.List(ctx, &domain.ArticleListQuery{})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, repo.listCalls)
}

func TestUpdateInvalidatesListings(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	a := seedArticle(repo, "Before", 0, domain.StatusPublished)
	ctx := context.Background()

	_, _, err := svc.List(ctx, &domain.ArticleListQuery{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID.Hex(), &domain.ArticleUpdateRequest{Headline: "After"})
	require.NoError(t, err)

	// Invalidation runs on a background goroutine; the listing must
	// show the new headline once it lands.
	require.Eventually(t, func() bool {
		payload, _, err := svc.List(ctx, &domain.ArticleListQuery{})
		if err != nil {
			return false
		}
		var views []*domain.ArticleView
		if err := json.Unmarshal(payload.Data, &views); err != nil || len(views) == 0 {
			return false
		}
		return views[0].Headline == "After"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDeleteInvalidatesDetail(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	a := seedArticle(repo, "Doomed", 0, domain.StatusPublished)
	ctx := context.Background()

	_, _, err := svc.GetByID(ctx, a.ID.Hex())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, a.ID.Hex())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, _, err := svc.GetByID(ctx, a.ID.Hex())
		return err == domain.ErrArticleNotFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIncrementViewsIsReadable(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	a := seedArticle(repo, "Counted", 0, domain.StatusPublished)
	ctx := context.Background()

	// Prime the counter cache at zero.
	payload, _, err := svc.TotalViews(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.JSONEq(t, `{"views":0}`, string(payload.Data))

	updated, err := svc.IncrementViews(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Views)

	// The invalidation is synchronous: the very next counter read must
	// observe the increment.
	payload, cached, err := svc.TotalViews(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.JSONEq(t, `{"views":1}`, string(payload.Data))
}

func TestIncrementSharesIsReadable(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	a := seedArticle(repo, "Shared", 0, domain.StatusPublished)
	ctx := context.Background()

	_, _, err := svc.ShareCount(ctx, a.ID.Hex())
	require.NoError(t, err)

	_, err = svc.IncrementShareCount(ctx, a.ID.Hex())
	require.NoError(t, err)

	payload, cached, err := svc.ShareCount(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.JSONEq(t, `{"shareCount":1}`, string(payload.Data))
}

func TestGetByIDWithViewsCountsOncePerWindow(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)
	a := seedArticle(repo, "Popular", 0, domain.StatusPublished)
	ctx := context.Background()

	_, cached, err := svc.GetByIDWithViews(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.GetByIDWithViews(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.True(t, cached)

	assert.Equal(t, int64(1), a.Views, "a cache hit must not count a view")
}

func TestInvalidIDRejectedBeforeStore(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)

	_, _, err := svc.GetByID(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Equal(t, 0, repo.getCalls)
}

func TestListByStatusValidatesFirst(t *testing.T) {
	svc, repo, _, _ := newTestArticleService(t)

	_, _, err := svc.ListByStatus(context.Background(), &domain.StatusFilter{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, 0, repo.listCalls)
}

func TestListByCategoryUnknownCategory(t *testing.T) {
	svc, _, _, _ := newTestArticleService(t)

	_, _, err := svc.ListByCategory(context.Background(), "missing", "createdAt", "desc")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestListSurvivesCacheOutage(t *testing.T) {
	svc, repo, _, mr := newTestArticleService(t)
	seedArticle(repo, "Resilient", 0, domain.StatusPublished)
	ctx := context.Background()

	mr.Close()

	for i := 0; i < 2; i++ {
		payload, cached, err := svc.List(ctx, &domain.ArticleListQuery{})
		require.NoError(t, err)
		assert.False(t, cached)

		var views []*domain.ArticleView
		require.NoError(t, json.Unmarshal(payload.Data, &views))
		require.Len(t, views, 1)
		assert.Equal(t, "Resilient", views[0].Headline)
	}
	assert.Equal(t, 2, repo.listCalls)
}

func TestResolveReplacesReferences(t *testing.T) {
	svc, repo, refs, _ := newTestArticleService(t)

	tag := &domain.Tag{ID: primitive.NewObjectID(), Name: "cricket"}
	author := &domain.Author{ID: primitive.NewObjectID(), FirstName: "Sita", LastName: "Shrestha"}
	category := &domain.Category{ID: primitive.NewObjectID(), Name: "sports"}
	refs.tags = []*domain.Tag{tag}
	refs.authors = []*domain.Author{author}
	refs.categories = []*domain.Category{category}

	a := seedArticle(repo, "Resolved", 0, domain.StatusPublished)
	a.SelectedTags = []primitive.ObjectID{tag.ID, primitive.NewObjectID()}
	a.SelectedAuthors = []primitive.ObjectID{author.ID}
	a.Category = category.ID

	payload, _, err := svc.GetByID(context.Background(), a.ID.Hex())
	require.NoError(t, err)

	var view domain.ArticleView
	require.NoError(t, json.Unmarshal(payload.Data, &view))
	assert.Equal(t, []string{"cricket"}, view.SelectedTags, "dangling tag references are dropped")
	assert.Equal(t, []string{"Sita Shrestha"}, view.SelectedAuthors)
	assert.Equal(t, "sports", view.Category)
}
