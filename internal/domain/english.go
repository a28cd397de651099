package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnglishCategories are the allowed categories of the English variant.
// Unlike the primary collection, the category is stored inline as a string.
var EnglishCategories = []string{
	"politics", "sports", "economics", "lifestyle", "tourism",
	"international", "science", "society", "mountaineering", "photogallery",
}

// ValidEnglishCategory reports whether name is an allowed English category.
func ValidEnglishCategory(name string) bool {
	for _, c := range EnglishCategories {
		if c == name {
			return true
		}
	}
	return false
}

// EnglishArticle is the secondary article variant: tags and category are
// plain strings, the location is a free-form label.
type EnglishArticle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Headline           string             `bson:"headline" json:"headline"`
	Content            string             `bson:"content,omitempty" json:"content,omitempty"`
	Tags               []string           `bson:"tags" json:"tags"`
	Photos             []string           `bson:"photos" json:"photos"`
	YoutubeLink        string             `bson:"youtubeLink,omitempty" json:"youtubeLink,omitempty"`
	Category           string             `bson:"category" json:"category"`
	Views              int64              `bson:"views" json:"views"`
	ShareCount         int64              `bson:"shareCount" json:"shareCount"`
	LastTrendingUpdate time.Time          `bson:"lastTrendingUpdate" json:"lastTrendingUpdate"`
	Location           string             `bson:"location" json:"location"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EnglishLocationInfo bundles an English article's location with its counters.
type EnglishLocationInfo struct {
	Location   string `json:"location"`
	ShareCount int64  `json:"shareCount"`
	Views      int64  `json:"views"`
}

// EnglishCreateRequest represents a request to create an English article.
type EnglishCreateRequest struct {
	Headline    string   `json:"headline" binding:"required,min=1"`
	Content     string   `json:"content" binding:"required,min=1"`
	Tags        []string `json:"tags"`
	Photos      []string `json:"photos"`
	YoutubeLink string   `json:"youtubeLink"`
	Category    string   `json:"category" binding:"required"`
}

// EnglishUpdateRequest represents a partial update of an English article.
type EnglishUpdateRequest struct {
	Headline    string   `json:"headline"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Photos      []string `json:"photos"`
	YoutubeLink string   `json:"youtubeLink"`
	Category    string   `json:"category"`
}
