package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArticleStatus is the publication state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusScheduled ArticleStatus = "scheduled"
	StatusPublished ArticleStatus = "published"
)

// ValidStatus reports whether s is one of the known publication states.
func ValidStatus(s string) bool {
	switch ArticleStatus(s) {
	case StatusDraft, StatusScheduled, StatusPublished:
		return true
	}
	return false
}

// GeoPoint is a GeoJSON point attached to an article. The service only
// forwards it, it never interprets the coordinates.
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// Article represents a news article in the primary collection. Tags,
// authors and category are references resolved at read time.
type Article struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Headline           string               `bson:"headline" json:"headline"`
	Subheadline        string               `bson:"subheadline,omitempty" json:"subheadline,omitempty"`
	Content            string               `bson:"content,omitempty" json:"content,omitempty"`
	SelectedTags       []primitive.ObjectID `bson:"selectedTags" json:"selectedTags,omitempty"`
	SelectedAuthors    []primitive.ObjectID `bson:"selectedAuthors" json:"selectedAuthors,omitempty"`
	Photos             []string             `bson:"photos" json:"photos"`
	YoutubeLink        string               `bson:"youtubeLink,omitempty" json:"youtubeLink,omitempty"`
	Category           primitive.ObjectID   `bson:"category,omitempty" json:"category,omitempty"`
	Views              int64                `bson:"views" json:"views"`
	ShareCount         int64                `bson:"shareCount" json:"shareCount"`
	LastTrendingUpdate time.Time            `bson:"lastTrendingUpdate" json:"lastTrendingUpdate"`
	Location           GeoPoint             `bson:"location" json:"location"`
	Status             ArticleStatus        `bson:"status" json:"status"`
	PublishDate        *time.Time           `bson:"publishDate,omitempty" json:"publishDate,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ArticleView is the wire shape of an article: tag, author and category
// references replaced by their display names.
type ArticleView struct {
	ID                 primitive.ObjectID `json:"_id"`
	Headline           string             `json:"headline"`
	Subheadline        string             `json:"subheadline,omitempty"`
	Content            string             `json:"content,omitempty"`
	SelectedTags       []string           `json:"selectedTags"`
	SelectedAuthors    []string           `json:"selectedAuthors"`
	Photos             []string           `json:"photos"`
	YoutubeLink        string             `json:"youtubeLink,omitempty"`
	Category           string             `json:"category,omitempty"`
	Views              int64              `json:"views"`
	ShareCount         int64              `json:"shareCount"`
	LastTrendingUpdate time.Time          `json:"lastTrendingUpdate"`
	Status             ArticleStatus      `json:"status"`
	PublishDate        *time.Time         `json:"publishDate,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// TrendingArticle is the projected shape served on the trending list.
type TrendingArticle struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Headline    string             `bson:"headline" json:"headline"`
	Subheadline string             `bson:"subheadline,omitempty" json:"subheadline,omitempty"`
	Photos      []string           `bson:"photos" json:"photos"`
	YoutubeLink string             `bson:"youtubeLink,omitempty" json:"youtubeLink,omitempty"`
	Views       int64              `bson:"views" json:"views"`
	Status      ArticleStatus      `bson:"status" json:"status"`
	PublishDate *time.Time         `bson:"publishDate,omitempty" json:"publishDate,omitempty"`
}

// LocationInfo bundles an article's location with its counters.
type LocationInfo struct {
	Location   GeoPoint `json:"location"`
	ShareCount int64    `json:"shareCount"`
	Views      int64    `json:"views"`
}

// ArticleCreateRequest represents a request to create an article.
// Photos carries already-stored photo paths; upload handling lives
// outside this service.
type ArticleCreateRequest struct {
	Headline        string   `json:"headline" binding:"required,min=1"`
	Subheadline     string   `json:"subheadline"`
	Content         string   `json:"content" binding:"required,min=1"`
	SelectedTags    []string `json:"selectedTags"`
	SelectedAuthors []string `json:"selectedAuthors"`
	Photos          []string `json:"photos"`
	YoutubeLink     string   `json:"youtubeLink"`
	Category        string   `json:"category" binding:"required"`
	PublishDate     string   `json:"publishDate"`
	Status          string   `json:"status" binding:"omitempty,oneof=draft scheduled published"`
}

// ArticleUpdateRequest represents a partial update. Empty fields keep
// the stored value.
type ArticleUpdateRequest struct {
	Headline        string   `json:"headline"`
	Subheadline     string   `json:"subheadline"`
	Content         string   `json:"content"`
	SelectedTags    []string `json:"selectedTags"`
	SelectedAuthors []string `json:"selectedAuthors"`
	Photos          []string `json:"photos"`
	YoutubeLink     string   `json:"youtubeLink"`
	Category        string   `json:"category"`
	Status          string   `json:"status" binding:"omitempty,oneof=draft scheduled published"`
}

// ArticleListQuery holds normalized parameters for the default listing.
type ArticleListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
}

// Normalize substitutes defaults so that semantically identical queries
// produce identical cache keys.
func (q *ArticleListQuery) Normalize(defaultLimit int) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
}

// StatusFilter holds normalized parameters for status-scoped listings.
type StatusFilter struct {
	Status     string
	AuthorID   string
	CategoryID string
	TagIDs     []string
	Page       int
	Limit      int
}

// Category is a resolved category reference.
type Category struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

// Tag is a resolved tag reference.
type Tag struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

// Author is a resolved author reference.
type Author struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
}

// FullName returns the display form used in article views.
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}
