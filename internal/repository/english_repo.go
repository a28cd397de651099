package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Khadka1996/everestnews-server/internal/domain"
)

// EnglishArticleRepository defines the persistence contract for the
// English article variant.
type EnglishArticleRepository interface {
	Create(ctx context.Context, article *domain.EnglishArticle) (*domain.EnglishArticle, error)
	GetByID(ctx context.Context, id string) (*domain.EnglishArticle, error)
	Update(ctx context.Context, id string, patch *domain.EnglishArticle) (*domain.EnglishArticle, error)
	Delete(ctx context.Context, id string) (*domain.EnglishArticle, error)

	// List retrieves articles newest first with pagination.
	List(ctx context.Context, page, limit int) ([]*domain.EnglishArticle, int64, error)

	// ListByCategory retrieves a paginated category listing, newest first.
	ListByCategory(ctx context.Context, category string, page, limit int) ([]*domain.EnglishArticle, int64, error)

	// SuggestHeadlines returns up to limit headlines matching the query.
	SuggestHeadlines(ctx context.Context, query string, limit int) ([]string, error)

	IncrementViews(ctx context.Context, id string) (*domain.EnglishArticle, error)
	IncrementShares(ctx context.Context, id string) (*domain.EnglishArticle, error)
	DistinctLocations(ctx context.Context) ([]interface{}, error)

	TopByViews(ctx context.Context, n int, views ViewsRange) ([]*domain.EnglishArticle, error)
	AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error)
	MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error
}
