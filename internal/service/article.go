package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Khadka1996/everestnews-server/internal/cache"
	"github.com/Khadka1996/everestnews-server/internal/config"
	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/internal/repository"
	"github.com/Khadka1996/everestnews-server/internal/validator"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
	"github.com/Khadka1996/everestnews-server/pkg/response"
)

// Default page sizes per listing shape.
const (
	defaultListLimit     = 20
	defaultStatusLimit   = 21
	defaultCategoryLimit = 12
	defaultTagLimit      = 9
	defaultAuthorLimit   = 1
)

// ArticleService implements the operations of the primary article
// collection: CRUD with cache invalidation, cached listings and
// counters, and the trending list.
type ArticleService struct {
	repo      repository.ArticleRepository
	refs      repository.ReferenceRepository
	keys      cache.Keys
	read      *cache.ReadThrough
	inv       *cache.Invalidator
	trending  *TrendingEngine
	ttl       config.CacheConfig
	sanitizer *bluemonday.Policy
	logger    *logger.Logger
	now       func() time.Time
}

// NewArticleService creates the primary article service.
func NewArticleService(
	repo repository.ArticleRepository,
	refs repository.ReferenceRepository,
	cacheClient *cache.Client,
	cfg *config.Config,
	log *logger.Logger,
) *ArticleService {
	keys := cache.NewKeys(cache.ResourceArticles)
	read := cache.NewReadThrough(cacheClient, log)

	return &ArticleService{
		repo: repo,
		refs: refs,
		keys: keys,
		read: read,
		inv:  cache.NewInvalidator(cacheClient, log),
		trending: NewTrendingEngine(
			primaryTrendingSource{repo: repo},
			read,
			keys.Trending(),
			cfg.Cache.TrendingTTL,
			cfg.Cache.FreshWindow,
			cfg.Trending.Size,
			cfg.Trending.RefreshWindow,
			repository.ViewsRange{Min: 1},
			log,
		),
		ttl:       cfg.Cache,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    log.WithComponent("article-service"),
		now:       time.Now,
	}
}

// Create validates and stores a new article, then invalidates every
// listing in the background.
func (s *ArticleService) Create(ctx context.Context, req *domain.ArticleCreateRequest) (*domain.Article, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(req.Photos) == 0 {
		return nil, domain.ErrPhotoRequired
	}

	status := domain.ArticleStatus(req.Status)
	if status == "" {
		status = domain.StatusDraft
	}
	if !domain.ValidStatus(string(status)) {
		return nil, domain.ErrInvalidStatus
	}

	now := s.now()

	var publishDate *time.Time
	if status == domain.StatusScheduled {
		if req.PublishDate == "" {
			return nil, domain.NewValidationError("publishDate", "required for scheduled articles")
		}
		pd, err := time.Parse(time.RFC3339, req.PublishDate)
		if err != nil {
			return nil, domain.NewValidationError("publishDate", "must be an RFC 3339 timestamp")
		}
		if !pd.After(now) {
			return nil, domain.ErrScheduleInPast
		}
		publishDate = &pd
	}

	tags, err := parseIDs(req.SelectedTags)
	if err != nil {
		return nil, err
	}
	authors, err := parseIDs(req.SelectedAuthors)
	if err != nil {
		return nil, err
	}
	category, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	article := &domain.Article{
		Headline:           strings.TrimSpace(req.Headline),
		Subheadline:        req.Subheadline,
		Content:            s.sanitizer.Sanitize(req.Content),
		SelectedTags:       tags,
		SelectedAuthors:    authors,
		Photos:             req.Photos,
		YoutubeLink:        req.YoutubeLink,
		Category:           category,
		Location:           domain.GeoPoint{Type: "Point"},
		Status:             status,
		PublishDate:        publishDate,
		LastTrendingUpdate: now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.repo.Create(ctx, article)
	if err != nil {
		return nil, err
	}

	keys, prefixes := s.keys.OnCreate()
	s.inv.InvalidateAsync(keys, prefixes)

	s.logger.Info("Article created", "id", created.ID.Hex(), "status", string(status))
	return created, nil
}

// Update merges non-empty request fields over the stored article.
func (s *ArticleService) Update(ctx context.Context, id string, req *domain.ArticleUpdateRequest) (*domain.Article, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := *current
	if req.Headline != "" {
		patch.Headline = strings.TrimSpace(req.Headline)
	}
	if req.Subheadline != "" {
		patch.Subheadline = req.Subheadline
	}
	if req.Content != "" {
		patch.Content = s.sanitizer.Sanitize(req.Content)
	}
	if req.YoutubeLink != "" {
		patch.YoutubeLink = req.YoutubeLink
	}
	if len(req.Photos) > 0 {
		patch.Photos = req.Photos
	}
	if len(req.SelectedTags) > 0 {
		tags, err := parseIDs(req.SelectedTags)
		if err != nil {
			return nil, err
		}
		patch.SelectedTags = tags
	}
	if len(req.SelectedAuthors) > 0 {
		authors, err := parseIDs(req.SelectedAuthors)
		if err != nil {
			return nil, err
		}
		patch.SelectedAuthors = authors
	}
	if req.Category != "" {
		category, err := primitive.ObjectIDFromHex(req.Category)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		patch.Category = category
	}
	if req.Status != "" {
		if !domain.ValidStatus(req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		patch.Status = domain.ArticleStatus(req.Status)
	}

	updated, err := s.repo.Update(ctx, id, &patch)
	if err != nil {
		return nil, err
	}

	keys, prefixes := s.keys.OnUpdate(id)
	s.inv.InvalidateAsync(keys, prefixes)

	s.logger.Info("Article updated", "id", id)
	return updated, nil
}

// Delete removes an article and returns the deleted document.
func (s *ArticleService) Delete(ctx context.Context, id string) (*domain.Article, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	keys, prefixes := s.keys.OnUpdate(id)
	s.inv.InvalidateAsync(keys, prefixes)

	s.logger.Info("Article deleted", "id", id)
	return deleted, nil
}

// List serves the default listing through the cache. Only the first
// page gets the short staleness window; deeper pages may serve the
// full TTL.
func (s *ArticleService) List(ctx context.Context, q *domain.ArticleListQuery) (*cache.Payload, bool, error) {
	q.Normalize(defaultListLimit)
	key := s.keys.Listing(q.Page, q.Limit, q.SortBy, q.SortOrder, q.Search)

	var maxAge time.Duration
	if q.Page == 1 {
		maxAge = s.ttl.FreshWindow
	}

	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, maxAge, func(ctx context.Context) (*cache.Payload, error) {
		articles, total, err := s.repo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		views, err := s.resolve(ctx, articles)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(views, response.NewPagination(q.Page, q.Limit, total))
	})
}

// GetByID serves an article's detail view through the cache.
func (s *ArticleService) GetByID(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Detail(id), s.ttl.DetailTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		view, err := s.resolveOne(ctx, article)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(view, nil)
	})
}

// GetByIDWithViews serves the detail view and counts a view. The
// increment happens only on a cache miss, so a reader counts at most
// once per cached window.
func (s *ArticleService) GetByIDWithViews(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Full(id), s.ttl.DetailWithViewsTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.IncrementViews(ctx, id)
		if err != nil {
			return nil, err
		}
		view, err := s.resolveOne(ctx, article)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(view, nil)
	})
}

// IncrementViews adds one view and synchronously invalidates the
// entries that carry the counter, so the next read observes it.
func (s *ArticleService) IncrementViews(ctx context.Context, id string) (*domain.Article, error) {
	updated, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, s.keys.OnViewsIncrement(id), nil)
	return updated, nil
}

// IncrementShareCount adds one share and synchronously invalidates the
// entries that carry the counter.
func (s *ArticleService) IncrementShareCount(ctx context.Context, id string) (*domain.Article, error) {
	updated, err := s.repo.IncrementShares(ctx, id)
	if err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, s.keys.OnSharesIncrement(id), nil)
	return updated, nil
}

// TotalViews serves an article's view counter through the cache.
func (s *ArticleService) TotalViews(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Views(id), s.ttl.CounterTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(struct {
			Views int64 `json:"views"`
		}{article.Views}, nil)
	})
}

// ShareCount serves an article's share counter through the cache.
func (s *ArticleService) ShareCount(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Shares(id), s.ttl.CounterTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(struct {
			ShareCount int64 `json:"shareCount"`
		}{article.ShareCount}, nil)
	})
}

// AuthorsByArticle serves the resolved authors of an article.
func (s *ArticleService) AuthorsByArticle(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Authors(id), s.ttl.RelatedTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		authors, err := s.refs.AuthorsByIDs(ctx, article.SelectedAuthors)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(authors, nil)
	})
}

// TagsByArticle serves the resolved tags of an article.
func (s *ArticleService) TagsByArticle(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Tags(id), s.ttl.RelatedTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tags, err := s.refs.TagsByIDs(ctx, article.SelectedTags)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(tags, nil)
	})
}

// UniqueLocations serves the distinct locations across the collection.
func (s *ArticleService) UniqueLocations(ctx context.Context) (*cache.Payload, bool, error) {
	return s.read.Fetch(ctx, s.keys.Locations(), s.ttl.LocationsTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		values, err := s.repo.DistinctLocations(ctx)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(values, nil)
	})
}

// LocationByID returns one article's location and counters. Not cached:
// the counters should read current.
func (s *ArticleService) LocationByID(ctx context.Context, id string) (*domain.LocationInfo, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.LocationInfo{
		Location:   article.Location,
		ShareCount: article.ShareCount,
		Views:      article.Views,
	}, nil
}

// ListByStatus serves a status-scoped listing through the cache. The
// status is validated before the cache is touched.
func (s *ArticleService) ListByStatus(ctx context.Context, f *domain.StatusFilter) (*cache.Payload, bool, error) {
	if !domain.ValidStatus(f.Status) {
		return nil, false, domain.ErrInvalidStatus
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultStatusLimit
	}

	key := s.keys.StatusListing(f.Status, f.AuthorID, f.CategoryID, f.TagIDs, f.Page, f.Limit)
	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		articles, total, err := s.repo.ListByStatus(ctx, f)
		if err != nil {
			return nil, err
		}
		views, err := s.resolve(ctx, articles)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(views, response.NewPagination(f.Page, f.Limit, total))
	})
}

// ListByCategory serves every article of a category with dynamic
// sorting, unpaginated.
func (s *ArticleService) ListByCategory(ctx context.Context, category, sortField, sortOrder string) (*cache.Payload, bool, error) {
	if sortField == "" {
		sortField = "createdAt"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	cat, err := s.refs.CategoryByName(ctx, category)
	if err != nil {
		return nil, false, err
	}

	key := s.keys.CategoryListing(category, "", 0, 0, sortField, sortOrder)
	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		articles, err := s.repo.ListByCategory(ctx, cat.ID, sortField, sortOrder)
		if err != nil {
			return nil, err
		}
		views, err := s.resolve(ctx, articles)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(views, nil)
	})
}

// ListByCategoryWithStatus serves a paginated category listing scoped
// by status.
func (s *ArticleService) ListByCategoryWithStatus(ctx context.Context, category, status string, page, limit int) (*cache.Payload, bool, error) {
	if !domain.ValidStatus(status) {
		return nil, false, domain.ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultCategoryLimit
	}

	cat, err := s.refs.CategoryByName(ctx, category)
	if err != nil {
		return nil, false, err
	}

	key := s.keys.CategoryListing(category, status, page, limit, "createdAt", "desc")
	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		articles, total, err := s.repo.ListByCategoryWithStatus(ctx, cat.ID, status, page, limit)
		if err != nil {
			return nil, err
		}
		views, err := s.resolve(ctx, articles)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(views, response.NewPagination(page, limit, total))
	})
}

// ListByTagWithStatus serves a paginated tag listing scoped by status.
// The tag parameter accepts either a tag ID or a tag name.
func (s *ArticleService) ListByTagWithStatus(ctx context.Context, tag, status string, page, limit int) (*cache.Payload, bool, error) {
	if !domain.ValidStatus(status) {
		return nil, false, domain.ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultTagLimit
	}

	tagID := tag
	if _, err := primitive.ObjectIDFromHex(tag); err != nil {
		resolved, err := s.refs.TagByName(ctx, tag)
		if err != nil {
			return nil, false, err
		}
		tagID = resolved.ID.Hex()
	}

	key := s.keys.TagListing(tag, status, page, limit)
	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		filter := &domain.StatusFilter{Status: status, TagIDs: []string{tagID}, Page: page, Limit: limit}
		articles, total, err := s.repo.ListByStatus(ctx, filter)
		if err != nil {
			return nil, err
		}
		views, err := s.resolve(ctx, articles)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(views, response.NewPagination(page, limit, total))
	})
}

// ListByAuthorsWithStatus serves a paginated listing of articles by any
// author matching the name, scoped by status.
func (s *ArticleService) ListByAuthorsWithStatus(ctx context.Context, author, status string, page, limit int) (*cache.Payload, bool, error) {
	if !domain.ValidStatus(status) {
		return nil, false, domain.ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultAuthorLimit
	}

	authors, err := s.refs.AuthorsByName(ctx, author)
	if err != nil {
		return nil, false, err
	}
	if len(authors) == 0 {
		return nil, false, domain.ErrAuthorNotFound
	}
	authorIDs := make([]primitive.ObjectID, 0, len(authors))
	for _, a := range authors {
		authorIDs = append(authorIDs, a.ID)
	}

	key := s.keys.AuthorListing(author, status, page, limit)
	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		articles, total, err := s.repo.ListByAuthorsWithStatus(ctx, authorIDs, status, page, limit)
		if err != nil {
			return nil, err
		}
		views, err := s.resolve(ctx, articles)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(views, response.NewPagination(page, limit, total))
	})
}

// Trending serves the trending list.
func (s *ArticleService) Trending(ctx context.Context) (*cache.Payload, bool, error) {
	return s.trending.Get(ctx)
}

// resolve replaces tag, author and category references with display
// data, one batch query per referenced collection for the whole page.
func (s *ArticleService) resolve(ctx context.Context, articles []*domain.Article) ([]*domain.ArticleView, error) {
	tagSet := map[primitive.ObjectID]struct{}{}
	authorSet := map[primitive.ObjectID]struct{}{}
	categorySet := map[primitive.ObjectID]struct{}{}
	for _, a := range articles {
		for _, id := range a.SelectedTags {
			tagSet[id] = struct{}{}
		}
		for _, id := range a.SelectedAuthors {
			authorSet[id] = struct{}{}
		}
		if !a.Category.IsZero() {
			categorySet[a.Category] = struct{}{}
		}
	}

	tags, err := s.refs.TagsByIDs(ctx, idSlice(tagSet))
	if err != nil {
		return nil, err
	}
	authors, err := s.refs.AuthorsByIDs(ctx, idSlice(authorSet))
	if err != nil {
		return nil, err
	}
	categories, err := s.refs.CategoriesByIDs(ctx, idSlice(categorySet))
	if err != nil {
		return nil, err
	}

	tagNames := make(map[primitive.ObjectID]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	authorNames := make(map[primitive.ObjectID]string, len(authors))
	for _, a := range authors {
		authorNames[a.ID] = a.FullName()
	}
	categoryNames := make(map[primitive.ObjectID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	views := make([]*domain.ArticleView, 0, len(articles))
	for _, a := range articles {
		view := &domain.ArticleView{
			ID:                 a.ID,
			Headline:           a.Headline,
			Subheadline:        a.Subheadline,
			Content:            a.Content,
			SelectedTags:       resolveNames(a.SelectedTags, tagNames),
			SelectedAuthors:    resolveNames(a.SelectedAuthors, authorNames),
			Photos:             a.Photos,
			YoutubeLink:        a.YoutubeLink,
			Category:           categoryNames[a.Category],
			Views:              a.Views,
			ShareCount:         a.ShareCount,
			LastTrendingUpdate: a.LastTrendingUpdate,
			Status:             a.Status,
			PublishDate:        a.PublishDate,
			CreatedAt:          a.CreatedAt,
			UpdatedAt:          a.UpdatedAt,
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ArticleService) resolveOne(ctx context.Context, article *domain.Article) (*domain.ArticleView, error) {
	views, err := s.resolve(ctx, []*domain.Article{article})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func parseIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func idSlice(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// resolveNames maps references to display names, dropping references
// whose target no longer exists.
func resolveNames(ids []primitive.ObjectID, names map[primitive.ObjectID]string) []string {
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			resolved = append(resolved, name)
		}
	}
	return resolved
}
