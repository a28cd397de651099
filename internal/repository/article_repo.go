package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Khadka1996/everestnews-server/internal/domain"
)

// ViewsRange bounds the views filter of a trending query. Zero values
// disable the corresponding bound.
type ViewsRange struct {
	Min int64 // articles must have views >= Min
	Max int64 // when > 0, articles must have views < Max
}

// ArticleRepository defines the persistence contract for the primary
// article collection.
type ArticleRepository interface {
	// Create inserts a new article and returns it with its assigned ID.
	Create(ctx context.Context, article *domain.Article) (*domain.Article, error)

	// GetByID retrieves an article by ID
	GetByID(ctx context.Context, id string) (*domain.Article, error)

	// Update applies a field-merge patch and returns the updated article.
	Update(ctx context.Context, id string, patch *domain.Article) (*domain.Article, error)

	// Delete removes an article and returns the deleted document.
	Delete(ctx context.Context, id string) (*domain.Article, error)

	// List retrieves articles with sorting, searching and pagination.
	List(ctx context.Context, q *domain.ArticleListQuery) ([]*domain.Article, int64, error)

	// ListByStatus retrieves articles filtered by status and optional
	// author/category/tag scopes, newest first, content excluded.
	ListByStatus(ctx context.Context, f *domain.StatusFilter) ([]*domain.Article, int64, error)

	// ListByCategory retrieves every article of a category with dynamic sorting.
	ListByCategory(ctx context.Context, categoryID primitive.ObjectID, sortField, sortOrder string) ([]*domain.Article, error)

	// ListByCategoryWithStatus retrieves a paginated category listing
	// scoped by status, newest first, content excluded.
	ListByCategoryWithStatus(ctx context.Context, categoryID primitive.ObjectID, status string, page, limit int) ([]*domain.Article, int64, error)

	// ListByAuthorsWithStatus retrieves a paginated listing of articles
	// written by any of the given authors, scoped by status.
	ListByAuthorsWithStatus(ctx context.Context, authorIDs []primitive.ObjectID, status string, page, limit int) ([]*domain.Article, int64, error)

	// IncrementViews atomically adds one view and returns the updated article.
	IncrementViews(ctx context.Context, id string) (*domain.Article, error)

	// IncrementShares atomically adds one share and returns the updated article.
	IncrementShares(ctx context.Context, id string) (*domain.Article, error)

	// DistinctLocations returns the distinct location values across the collection.
	DistinctLocations(ctx context.Context) ([]interface{}, error)

	// TopByViews returns the top n articles ordered by views descending,
	// ID ascending as tie-break, optionally bounded by a views range.
	TopByViews(ctx context.Context, n int, views ViewsRange) ([]*domain.TrendingArticle, error)

	// AnyTrendingStaleBefore reports whether any article's trending
	// marker is older than cutoff. This is the store-wide staleness probe.
	AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error)

	// MarkTrendingRefreshed bulk-sets the trending marker on exactly the
	// given articles.
	MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error

	// PublishDue promotes scheduled articles whose publish date has
	// passed to published and returns how many were promoted.
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// ReferenceRepository resolves tag, author and category references. The
// referenced collections are owned by their own CRUD modules; this
// service only reads display data from them.
type ReferenceRepository interface {
	CategoryByName(ctx context.Context, name string) (*domain.Category, error)
	CategoriesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Category, error)
	TagByName(ctx context.Context, name string) (*domain.Tag, error)
	TagsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Tag, error)
	AuthorsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Author, error)
	AuthorsByName(ctx context.Context, name string) ([]*domain.Author, error)
}
