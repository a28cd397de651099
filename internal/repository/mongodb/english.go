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

// EnglishArticleRepository is the MongoDB implementation for the
// English article variant.
type EnglishArticleRepository struct {
	coll *mongo.Collection
}

// NewEnglishArticleRepository creates the English article repository.
func NewEnglishArticleRepository(db *DB) *EnglishArticleRepository {
	return &EnglishArticleRepository{coll: db.collection(collEnglish)}
}

func (r *EnglishArticleRepository) Create(ctx context.Context, article *domain.EnglishArticle) (*domain.EnglishArticle, error) {
	res, err := r.coll.InsertOne(ctx, article)
	if err != nil {
		return nil, fmt.Errorf("failed to insert english article: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		article.ID = oid
	}
	return article, nil
}

func (r *EnglishArticleRepository) GetByID(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var article domain.EnglishArticle
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&article)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find english article: %w", err)
	}
	return &article, nil
}

func (r *EnglishArticleRepository) Update(ctx context.Context, id string, patch *domain.EnglishArticle) (*domain.EnglishArticle, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"headline":    patch.Headline,
		"content":     patch.Content,
		"tags":        patch.Tags,
		"photos":      patch.Photos,
		"youtubeLink": patch.YoutubeLink,
		"category":    patch.Category,
		"updatedAt":   time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.EnglishArticle
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update english article: %w", err)
	}
	return &updated, nil
}

func (r *EnglishArticleRepository) Delete(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var deleted domain.EnglishArticle
	err = r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&deleted)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete english article: %w", err)
	}
	return &deleted, nil
}

func (r *EnglishArticleRepository) List(ctx context.Context, page, limit int) ([]*domain.EnglishArticle, int64, error) {
	return r.page(ctx, bson.M{}, page, limit)
}

func (r *EnglishArticleRepository) ListByCategory(ctx context.Context, category string, page, limit int) ([]*domain.EnglishArticle, int64, error) {
	return r.page(ctx, bson.M{"category": category}, page, limit)
}

// SuggestHeadlines returns up to limit headlines matching the query.
func (r *EnglishArticleRepository) SuggestHeadlines(ctx context.Context, query string, limit int) ([]string, error) {
	filter := bson.M{"headline": bson.M{"$regex": query, "$options": "i"}}
	opts := options.Find().
		SetProjection(bson.M{"headline": 1}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Headline string `bson:"headline"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}

	headlines := make([]string, 0, len(docs))
	for _, d := range docs {
		headlines = append(headlines, d.Headline)
	}
	return headlines, nil
}

func (r *EnglishArticleRepository) IncrementViews(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	return r.increment(ctx, id, "views")
}

func (r *EnglishArticleRepository) IncrementShares(ctx context.Context, id string) (*domain.EnglishArticle, error) {
	return r.increment(ctx, id, "shareCount")
}

func (r *EnglishArticleRepository) increment(ctx context.Context, id, field string) (*domain.EnglishArticle, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.EnglishArticle
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return &updated, nil
}

func (r *EnglishArticleRepository) DistinctLocations(ctx context.Context) ([]interface{}, error) {
	values, err := r.coll.Distinct(ctx, "location", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return values, nil
}

// TopByViews returns the top n articles by views, ID ascending as tie-break.
func (r *EnglishArticleRepository) TopByViews(ctx context.Context, n int, views repository.ViewsRange) ([]*domain.EnglishArticle, error) {
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
		SetLimit(int64(n))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trending articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []*domain.EnglishArticle
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode trending articles: %w", err)
	}
	return articles, nil
}

func (r *EnglishArticleRepository) AnyTrendingStaleBefore(ctx context.Context, cutoff time.Time) (bool, error) {
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

func (r *EnglishArticleRepository) MarkTrendingRefreshed(ctx context.Context, ids []primitive.ObjectID, at time.Time) error {
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

func (r *EnglishArticleRepository) page(ctx context.Context, filter bson.M, page, limit int) ([]*domain.EnglishArticle, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query english articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []*domain.EnglishArticle
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, 0, fmt.Errorf("failed to decode english articles: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count english articles: %w", err)
	}
	return articles, total, nil
}
