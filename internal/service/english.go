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

const (
	defaultEnglishLimit  = 12
	suggestHeadlineLimit = 10
)

// EnglishService implements the operations of the English article
// collection. Tags and category are inline strings here, so reads need
// no reference resolution.
type EnglishService struct {
	repo      repository.EnglishArticleRepository
	keys      cache.Keys
	read      *cache.ReadThrough
	inv       *cache.Invalidator
	trending  *TrendingEngine
	ttl       config.CacheConfig
	sanitizer *bluemonday.Policy
	logger    *logger.Logger
	now       func() time.Time
}

// NewEnglishService creates the English article service.
func NewEnglishService(
	repo repository.EnglishArticleRepository,
	cacheClient *cache.Client,
	cfg *config.Config,
	log *logger.Logger,
) *EnglishService {
	keys := cache.NewKeys(cache.ResourceEnglish)
	read := cache.NewReadThrough(cacheClient, log)

	return &EnglishService{
		repo: repo,
		keys: keys,
		read: read,
		inv:  cache.NewInvalidator(cacheClient, log),
		trending: NewTrendingEngine(
			englishTrendingSource{repo: repo},
			read,
			keys.Trending(),
			cfg.Cache.EnglishTrendingTTL,
			cfg.Cache.FreshWindow,
			cfg.Trending.EnglishSize,
			cfg.Trending.RefreshWindow,
			repository.ViewsRange{Min: 1, Max: cfg.Trending.EnglishMaxViews},
			log,
		),
		ttl:       cfg.Cache,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    log.WithComponent("english-service"),
		now:       time.Now,
	}
}

// Create validates and stores a new English article.
func (s *EnglishService) Create(ctx context.Context, req *domain.EnglishCreateRequest) (*domain.EnglishArticle, error) {
	if err := validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !domain.ValidEnglishCategory(req.Category) {
		return nil, domain.NewValidationError("category", "unknown category: "+req.Category)
	}

	now := s.now()
	article := &domain.EnglishArticle{
		Headline:           strings.TrimSpace(req.Headline),
		Content:            s.sanitizer.Sanitize(req.Content),
		Tags:               req.Tags,
		Photos:             req.Photos,
		YoutubeLink:        req.YoutubeLink,
		Category:           req.Category,
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

	s.logger.Info("English article created", "id", created.ID.Hex())
	return created, nil
}

// Update merges non-empty request fields over the stored article.
func (s *EnglishService) Update(ctx context.Context, id string, req *domain.EnglishUpdateRequest) (*domain.EnglishArticle, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := *current
	if req.Headline != "" {
		patch.Headline = strings.TrimSpace(req.Headline)
	}
	if req.Content != "" {
		patch.Content = s.sanitizer.Sanitize(req.Content)
	}
	if len(req.Tags) > 0 {
		patch.Tags = req.Tags
	}
	if len(req.Photos) > 0 {
		patch.Photos = req.Photos
	}
	if req.YoutubeLink != "" {
		patch.YoutubeLink = req.YoutubeLink
	}
	if req.Category != "" {
		if !domain.ValidEnglishCategory(req.Category) {
			return nil, domain.NewValidationError("category", "unknown category: "+req.Category)
		}
		patch.Category = req.Category
	}

	updated, err := s.repo.Update(ctx, id, &patch)
	if err != nil {
		return nil, err
	}

	keys, prefixes := s.keys.OnUpdate(id)
	s.inv.InvalidateAsync(keys, prefixes)

	s.logger.Info("English article updated", "id", id)
	return updated, nil
}

// Delete removes an English article and returns the deleted document.
func (s *EnglishService) Delete(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	keys, prefixes := s.keys.OnUpdate(id)
	s.inv.InvalidateAsync(keys, prefixes)

	s.logger.Info("English article deleted", "id", id)
	return deleted, nil
}

// List serves the default listing, newest first, through the cache.
func (s *EnglishService) List(ctx context.Context, page, limit int) (*cache.Payload, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultEnglishLimit
	}

	key := s.keys.Listing(page, limit, "createdAt", "desc", "")

	var maxAge time.Duration
	if page == 1 {
		maxAge = s.ttl.FreshWindow
	}

	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, maxAge, func(ctx context.Context) (*cache.Payload, error) {
		articles, total, err := s.repo.List(ctx, page, limit)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(articles, response.NewPagination(page, limit, total))
	})
}

// GetByID serves an English article's detail view through the cache.
func (s *EnglishService) GetByID(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Detail(id), s.ttl.DetailTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(article, nil)
	})
}

// GetByIDWithViews serves the detail view and counts a view on a cache
// miss, matching the primary collection's semantics.
func (s *EnglishService) GetByIDWithViews(ctx context.Context, id string) (*cache.Payload, bool, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, false, domain.ErrInvalidID
	}

	return s.read.Fetch(ctx, s.keys.Full(id), s.ttl.DetailWithViewsTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		article, err := s.repo.IncrementViews(ctx, id)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(article, nil)
	})
}

// ListByCategory serves a paginated category listing through the cache.
func (s *EnglishService) ListByCategory(ctx context.Context, category string, page, limit int) (*cache.Payload, bool, error) {
	if !domain.ValidEnglishCategory(category) {
		return nil, false, domain.ErrCategoryNotFound
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultEnglishLimit
	}

	key := s.keys.CategoryListing(category, "", page, limit, "createdAt", "desc")
	return s.read.Fetch(ctx, key, s.ttl.ListingTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		articles, total, err := s.repo.ListByCategory(ctx, category, page, limit)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(articles, response.NewPagination(page, limit, total))
	})
}

// SuggestHeadlines returns headline completions for a search prefix.
// Not cached: the result set is tiny and the queries rarely repeat.
func (s *EnglishService) SuggestHeadlines(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.SuggestHeadlines(ctx, query, suggestHeadlineLimit)
}

// IncrementViews adds one view and synchronously invalidates the
// entries that carry the counter.
func (s *EnglishService) IncrementViews(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	updated, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, s.keys.OnViewsIncrement(id), nil)
	return updated, nil
}

// IncrementShareCount adds one share and synchronously invalidates the
// entries that carry the counter.
func (s *EnglishService) IncrementShareCount(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	updated, err := s.repo.IncrementShares(ctx, id)
	if err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, s.keys.OnSharesIncrement(id), nil)
	return updated, nil
}

// TotalViews serves an article's view counter through the cache.
func (s *EnglishService) TotalViews(ctx context.Context, id string) (*cache.Payload, bool, error) {
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
func (s *EnglishService) ShareCount(ctx context.Context, id string) (*cache.Payload, bool, error) {
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

// UniqueLocations serves the distinct locations across the collection.
func (s *EnglishService) UniqueLocations(ctx context.Context) (*cache.Payload, bool, error) {
	return s.read.Fetch(ctx, s.keys.Locations(), s.ttl.LocationsTTL, 0, func(ctx context.Context) (*cache.Payload, error) {
		values, err := s.repo.DistinctLocations(ctx)
		if err != nil {
			return nil, err
		}
		return cache.NewPayload(values, nil)
	})
}

// LocationByID returns one article's location and counters.
func (s *EnglishService) LocationByID(ctx context.Context, id string) (*domain.EnglishLocationInfo, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.EnglishLocationInfo{
		Location:   article.Location,
		ShareCount: article.ShareCount,
		Views:      article.Views,
	}, nil
}

// Trending serves the English trending list.
func (s *EnglishService) Trending(ctx context.Context) (*cache.Payload, bool, error) {
	return s.trending.Get(ctx)
}
