package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Khadka1996/everestnews-server/internal/cache"
	"github.com/Khadka1996/everestnews-server/internal/repository"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// trendingSource abstracts one article collection for the trending
// engine: the staleness probe, the ranked query and the marker update.
type trendingSource interface {
	AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error)
	TopTrending(ctx context.Context, n int, views repository.ViewsRange) (data interface{}, ids []primitive.ObjectID, err error)
	MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error
}

// TrendingEngine computes and caches the trending list of one article
// collection. The list is the top articles by views, lowest ID first on
// equal views, recomputed lazily: reads serve the cached list until it
// ages out, and the ranking itself is only re-marked when some article's
// refresh marker has fallen behind the refresh window.
type TrendingEngine struct {
	source        trendingSource
	read          *cache.ReadThrough
	key           string
	ttl           time.Duration
	freshWindow   time.Duration
	size          int
	refreshWindow time.Duration
	freshRange    repository.ViewsRange
	logger        *logger.Logger
	now           func() time.Time
}

// NewTrendingEngine creates a trending engine for one collection.
// freshRange bounds the views filter of recomputations that did not
// trip the staleness probe; a zero range disables the filter.
func NewTrendingEngine(
	source trendingSource,
	read *cache.ReadThrough,
	key string,
	ttl, freshWindow time.Duration,
	size int,
	refreshWindow time.Duration,
	freshRange repository.ViewsRange,
	log *logger.Logger,
) *TrendingEngine {
	return &TrendingEngine{
		source:        source,
		read:          read,
		key:           key,
		ttl:           ttl,
		freshWindow:   freshWindow,
		size:          size,
		refreshWindow: refreshWindow,
		freshRange:    freshRange,
		logger:        log.WithComponent("trending"),
		now:           time.Now,
	}
}

// Get returns the trending list, serving the cache when the entry is
// younger than the fresh window and recomputing otherwise.
func (e *TrendingEngine) Get(ctx context.Context) (*cache.Payload, bool, error) {
	return e.read.Fetch(ctx, e.key, e.ttl, e.freshWindow, e.recompute)
}

func (e *TrendingEngine) recompute(ctx context.Context) (*cache.Payload, error) {
	now := e.now()
	stale, err := e.source.AnyTrendingStaleBefore(ctx, now.Add(-e.refreshWindow))
	if err != nil {
		return nil, err
	}

	// A stale marker anywhere forces a full re-rank without the views
	// filter, so articles whose counters sank still compete.
	views := e.freshRange
	if stale {
		views = repository.ViewsRange{}
	}

	data, ids, err := e.source.TopTrending(ctx, e.size, views)
	if err != nil {
		return nil, err
	}

	if stale {
		// Exactly the ranked articles get the new marker; everything
		// else stays stale and keeps forcing re-ranks until it either
		// ranks or is deleted.
		if err := e.source.MarkTrendingRefreshed(ctx, ids, now); err != nil {
			return nil, err
		}
		e.logger.Info("Trending ranking refreshed", "key", e.key, "articles", len(ids))
	}

	return cache.NewPayload(data, nil)
}

// primaryTrendingSource adapts the primary article repository.
type primaryTrendingSource struct {
	repo repository.ArticleRepository
}

func (s primaryTrendingSource) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
	return s.repo.AnyTrendingStaleBefore(ctx, cutoff)
}

func (s primaryTrendingSource) TopTrending(ctx context.Context, n int, views repository.ViewsRange) (interface{}, []primitive.ObjectID, error) {
	articles, err := s.repo.TopByViews(ctx, n, views)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return articles, ids, nil
}

func (s primaryTrendingSource) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	return s.repo.MarkTrendingRefreshed(ctx, ids, at)
}

// englishTrendingSource adapts the English article repository.
type englishTrendingSource struct {
	repo repository.EnglishArticleRepository
}

func (s englishTrendingSource) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
	return s.repo.AnyTrendingStaleBefore(ctx, cutoff)
}

func (s englishTrendingSource) TopTrending(ctx context.Context, n int, views repository.ViewsRange) (interface{}, []primitive.ObjectID, error) {
	articles, err := s.repo.TopByViews(ctx, n, views)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return articles, ids, nil
}

func (s englishTrendingSource) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	return s.repo.MarkTrendingRefreshed(ctx, ids, at)
}
