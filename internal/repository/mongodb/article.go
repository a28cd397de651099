package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Khadka1996/everestnews-server/internal/domain"
	"github.com/Khadka1996/everestnews-server/internal/repository"
)

// trendingProjection is the field set served on the trending list.
var trendingProjection = bson.M{
	"headline": 1, "subheadline": 1, "photos": 1, "youtubeLink": 1,
	"views": 1, "status": 1, "publishDate": 1,
}

// ArticleRepository is the MongoDB implementation for the primary
// article collection.
type ArticleRepository struct {
	coll *mongo.Collection
}

// NewArticleRepository creates the primary article repository.
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{coll: db.collection(collArticles)}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID
	}
	return oid, nil
}

// Create inserts a new article and returns it with its assigned ID.
func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) (*domain.Article, error) {
	res, err := r.coll.InsertOne(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		article.ID = oid
	}
	return article, nil
}

// GetByID retrieves an article by ID.
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var article domain.Article
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&article)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	return &article, nil
}

// Update applies a field-merge patch and returns the updated article.
func (r *ArticleRepository) Update(ctx context.Context, id string, patch *domain.Article) (*domain.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"headline":        patch.Headline,
		"subheadline":     patch.Subheadline,
		"content":         patch.Content,
		"selectedTags":    patch.SelectedTags,
		"selectedAuthors": patch.SelectedAuthors,
		"photos":          patch.Photos,
		"youtubeLink":     patch.YoutubeLink,
		"category":        patch.Category,
		"status":          patch.Status,
		"publishDate":     patch.PublishDate,
		"updatedAt":       time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.Article
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return &updated, nil
}

// Delete removes an article and returns the deleted document.
func (r *ArticleRepository) Delete(ctx context.Context, id string) (*domain.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var deleted domain.Article
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&deleted)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete article: %w", err)
	}
	return &deleted, nil
}

// List retrieves articles with sorting, searching and pagination.
func (r *ArticleRepository) List(ctx context.Context, q *domain.ArticleListQuery) ([]*domain.Article, int64, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter["headline"] = bson.M{"$regex": q.Search, "$options": "i"}
	}

	order := -1
	if q.SortOrder == "asc" {
		order = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: order}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	articles, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return articles, total, nil
}

// ListByStatus retrieves articles filtered by status and optional scopes.
func (r *ArticleRepository) ListByStatus(ctx context.Context, f *domain.StatusFilter) ([]*domain.Article, int64, error) {
	filter := bson.M{"status": f.Status}
	if f.AuthorID != "" {
		oid, err := parseID(f.AuthorID)
		if err != nil {
			return nil, 0, err
		}
		filter["selectedAuthors"] = oid
	}
	if f.CategoryID != "" {
		oid, err := parseID(f.CategoryID)
		if err != nil {
			return nil, 0, err
		}
		filter["category"] = oid
	}
	if len(f.TagIDs) > 0 {
		oids := make([]primitive.ObjectID, 0, len(f.TagIDs))
		for _, id := range f.TagIDs {
			oid, err := parseID(id)
			if err != nil {
				return nil, 0, err
			}
			oids = append(oids, oid)
		}
		filter["selectedTags"] = bson.M{"$in": oids}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit)).
		SetProjection(bson.M{"content": 0})

	articles, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return articles, total, nil
}

// ListByCategory retrieves every article of a category with dynamic sorting.
func (r *ArticleRepository) ListByCategory(ctx context.Context, categoryID primitive.ObjectID, sortField, sortOrder string) ([]*domain.Article, error) {
	order := -1
	if sortOrder == "asc" {
		order = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: order}})
	return r.find(ctx, bson.M{"category": categoryID}, opts)
}

// ListByCategoryWithStatus retrieves a paginated category listing scoped by status.
func (r *ArticleRepository) ListByCategoryWithStatus(ctx context.Context, categoryID primitive.ObjectID, status string, page, limit int) ([]*domain.Article, int64, error) {
	filter := bson.M{"category": categoryID, "status": status}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"content": 0})

	articles, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return articles, total, nil
}

// ListByAuthorsWithStatus retrieves a paginated listing of articles by
// any of the given authors, scoped by status.
func (r *ArticleRepository) ListByAuthorsWithStatus(ctx context.Context, authorIDs []primitive.ObjectID, status string, page, limit int) ([]*domain.Article, int64, error) {
	filter := bson.M{
		"selectedAuthors": bson.M{"$in": authorIDs},
		"status":          status,
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"content": 0})

	articles, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return articles, total, nil
}

// IncrementViews atomically adds one view and returns the updated article.
func (r *ArticleRepository) IncrementViews(ctx context.Context, id string) (*domain.Article, error) {
	return r.increment(ctx, id, "views")
}

// IncrementShares atomically adds one share and returns the updated article.
func (r *ArticleRepository) IncrementShares(ctx context.Context, id string) (*domain.Article, error) {
	return r.increment(ctx, id, "shareCount")
}

func (r *ArticleRepository) increment(ctx context.Context, id, field string) (*domain.Article, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Article
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return &updated, nil
}

// DistinctLocations returns the distinct location values across the collection.
func (r *ArticleRepository) DistinctLocations(ctx context.Context) ([]interface{}, error) {
	values, err := r.coll.Distinct(ctx, "location", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return values, nil
}

// TopByViews returns the top n articles by views, ID ascending as tie-break.
func (r *ArticleRepository) TopByViews(ctx context.Context, n int, views repository.ViewsRange) ([]*domain.TrendingArticle, error) {
	filter := bson.M{}
	if views.Min > 0 || views.Max > 0 {
		bounds := bson.M{}
		if views.Min > 0 {
			bounds["$gte"] = views.Min
		}
		if views.Max > 0 {
			bounds["$lt"] = views.Max
		}
		filter["views"] = bounds
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(n)).
		SetProjection(trendingProjection)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []*domain.TrendingArticle
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode trending articles: %w", err)
	}
	return articles, nil
}

// AnyTrendingStaleBefore reports whether any article's trending marker
// is older than cutoff.
func (r *ArticleRepository) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
	filter := bson.M{"lastTrendingUpdate": bson.M{"$lt": cutoff}}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})

	err := r.coll.FindOne(ctx, filter, opts).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe trending staleness: %w", err)
	}
	return true, nil
}

// MarkTrendingRefreshed bulk-sets the trending marker on the given articles.
func (r *ArticleRepository) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"lastTrendingUpdate": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark trending refresh: %w", err)
	}
	return nil
}

// PublishDue promotes scheduled articles whose publish date has passed.
func (r *ArticleRepository) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"status": domain.StatusScheduled, "publishDate": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": domain.StatusPublished, "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to publish scheduled articles: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *ArticleRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Article, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []*domain.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return articles, nil
}
