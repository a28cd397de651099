package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Khadka1996/everestnews-server/internal/domain"
)

// ReferenceRepository resolves tag, author and category display data.
// The referenced collections are written by their own CRUD modules;
// only reads happen here.
type ReferenceRepository struct {
	categories *mongo.Collection
	tags       *mongo.Collection
	authors    *mongo.Collection
}

// NewReferenceRepository creates the reference resolver.
func NewReferenceRepository(db *DB) *ReferenceRepository {
	return &ReferenceRepository{
		categories: db.collection(collCategories),
		tags:       db.collection(collTags),
		authors:    db.collection(collAuthors),
	}
}

// CategoryByName finds a category by its display name.
func (r *ReferenceRepository) CategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var category domain.Category
	err := r.categories.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

// CategoriesByIDs resolves a set of category references.
func (r *ReferenceRepository) CategoriesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*domain.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// TagByName finds a tag by its display name.
func (r *ReferenceRepository) TagByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.tags.FindOne(ctx, bson.M{"name": name}).Decode(&tag)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}
	return &tag, nil
}

// TagsByIDs resolves a set of tag references.
func (r *ReferenceRepository) TagsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.tags.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find tags: %w", err)
	}
	defer cursor.Close(ctx)

	var tags []*domain.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

// AuthorsByIDs resolves a set of author references.
func (r *ReferenceRepository) AuthorsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.authors.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find authors: %w", err)
	}
	defer cursor.Close(ctx)

	var authors []*domain.Author
	if err := cursor.All(ctx, &authors); err != nil {
		return nil, fmt.Errorf("failed to decode authors: %w", err)
	}
	return authors, nil
}

// AuthorsByName finds authors whose first, last or full name matches
// the query, case-insensitively.
func (r *ReferenceRepository) AuthorsByName(ctx context.Context, name string) ([]*domain.Author, error) {
	regex := bson.M{"$regex": name, "$options": "i"}
	filter := bson.M{"$or": []bson.M{
		{"firstName": regex},
		{"lastName": regex},
		{"fullName": regex},
	}}

	cursor, err := r.authors.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search authors: %w", err)
	}
	defer cursor.Close(ctx)

	var authors []*domain.Author
	if err := cursor.All(ctx, &authors); err != nil {
		return nil, fmt.Errorf("failed to decode authors: %w", err)
	}
	return authors, nil
}
