package cache

import (
	"strconv"
	"strings"
)

// Resource names scoping the key space per article variant.
const (
	ResourceArticles = "articles"
	ResourceEnglish  = "english"
)

// Keys builds the deterministic cache keys for one article variant and
// enumerates the sets a write must invalidate. Keys are human-readable
// composites of the operation name and normalized parameters, so
// semantically identical requests always map to the same key.
type Keys struct {
	resource string
}

// NewKeys returns the key policy for a resource kind.
func NewKeys(resource string) Keys {
	return Keys{resource: resource}
}

func (k Keys) join(parts ...string) string {
	return k.resource + ":" + strings.Join(parts, ":")
}

// Listing is the key of the default listing. Parameters must be
// normalized by the caller (defaults substituted, empty search allowed).
func (k Keys) Listing(page, limit int, sortBy, sortOrder, search string) string {
	return k.join("all", strconv.Itoa(page), strconv.Itoa(limit), sortBy, sortOrder, search)
}

// StatusListing is the key of a status-scoped listing.
func (k Keys) StatusListing(status, authorID, categoryID string, tagIDs []string, page, limit int) string {
	return k.join("status", status, authorID, categoryID, strings.Join(tagIDs, ","),
		strconv.Itoa(page), strconv.Itoa(limit))
}

// CategoryListing is the key of a category listing, optionally scoped by
// status ("" when unscoped).
func (k Keys) CategoryListing(category, status string, page, limit int, sortField, sortOrder string) string {
	return k.join("category", category, status, strconv.Itoa(page), strconv.Itoa(limit), sortField, sortOrder)
}

// TagListing is the key of a tag-scoped listing.
func (k Keys) TagListing(tag, status string, page, limit int) string {
	return k.join("tag", tag, status, strconv.Itoa(page), strconv.Itoa(limit))
}

// AuthorListing is the key of an author-scoped listing.
func (k Keys) AuthorListing(author, status string, page, limit int) string {
	return k.join("author", author, status, strconv.Itoa(page), strconv.Itoa(limit))
}

// Trending is the singleton key of the trending list.
func (k Keys) Trending() string {
	return k.join("trending")
}

// Locations is the singleton key of the unique-locations listing.
func (k Keys) Locations() string {
	return k.join("locations")
}

// Detail is the key of a single article's detail view.
func (k Keys) Detail(id string) string {
	return k.join("id", id)
}

// Full is the key of the detail view served with a view increment.
func (k Keys) Full(id string) string {
	return k.join("full", id)
}

// Views is the key of an article's view counter.
func (k Keys) Views(id string) string {
	return k.join("views", id)
}

// Shares is the key of an article's share counter.
func (k Keys) Shares(id string) string {
	return k.join("shares", id)
}

// Authors is the key of the authors-of-an-article view.
func (k Keys) Authors(id string) string {
	return k.join("authors", id)
}

// Tags is the key of the tags-of-an-article view.
func (k Keys) Tags(id string) string {
	return k.join("tags", id)
}

// ListingPrefixes are the prefixes under which every listing-shaped key
// lives. Invalidation scans these, and only these: entity keys never
// share a listing prefix, so unrelated read types survive a write.
func (k Keys) ListingPrefixes() []string {
	return []string{
		k.resource + ":all:",
		k.resource + ":status:",
		k.resource + ":category:",
		k.resource + ":tag:",
		k.resource + ":author:",
	}
}

func (k Keys) entityKeys(id string) []string {
	return []string{
		k.Detail(id), k.Full(id), k.Views(id), k.Shares(id), k.Authors(id), k.Tags(id),
	}
}

// OnCreate returns the keys and prefixes a create must invalidate:
// every listing plus the trending and locations singletons.
func (k Keys) OnCreate() (keys []string, prefixes []string) {
	return []string{k.Trending(), k.Locations()}, k.ListingPrefixes()
}

// OnUpdate returns the invalidation set of an update or delete: the
// create set plus the article's own entity keys.
func (k Keys) OnUpdate(id string) (keys []string, prefixes []string) {
	keys, prefixes = k.OnCreate()
	return append(keys, k.entityKeys(id)...), prefixes
}

// OnViewsIncrement returns the invalidation set of a view increment.
// Listings are deliberately left alone: a single view does not reorder
// them under the adopted policy, only the trending ranking may change.
func (k Keys) OnViewsIncrement(id string) []string {
	return []string{k.Detail(id), k.Full(id), k.Views(id), k.Trending()}
}

// OnSharesIncrement returns the invalidation set of a share increment.
func (k Keys) OnSharesIncrement(id string) []string {
	return []string{k.Detail(id), k.Full(id), k.Shares(id), k.Trending()}
}
