package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingKeyDeterminism(t *testing.T) {
	k := NewKeys(ResourceArticles)

	a := k.Listing(1, 20, "createdAt", "desc", "nepal")
	b := k.Listing(1, 20, "createdAt", "desc", "nepal")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, k.Listing(2, 20, "createdAt", "desc", "nepal"))
	assert.NotEqual(t, a, k.Listing(1, 20, "views", "desc", "nepal"))
	assert.NotEqual(t, a, k.Listing(1, 20, "createdAt", "asc", "nepal"))
	assert.NotEqual(t, a, k.Listing(1, 20, "createdAt", "desc", ""))
}

func TestResourcesAreDisjoint(t *testing.T) {
	primary := NewKeys(ResourceArticles)
	english := NewKeys(ResourceEnglish)

	assert.NotEqual(t, primary.Trending(), english.Trending())
	assert.NotEqual(t, primary.Detail("abc"), english.Detail("abc"))

	for _, prefix := range english.ListingPrefixes() {
		assert.False(t, strings.HasPrefix(primary.Listing(1, 20, "createdAt", "desc", ""), prefix))
	}
}

func TestEntityKeysOutsideListingPrefixes(t *testing.T) {
	k := NewKeys(ResourceArticles)

	entity := []string{
		k.Detail("65a1"), k.Full("65a1"), k.Views("65a1"),
		k.Shares("65a1"), k.Authors("65a1"), k.Tags("65a1"),
		k.Trending(), k.Locations(),
	}
	for _, key := range entity {
		for _, prefix := range k.ListingPrefixes() {
			assert.False(t, strings.HasPrefix(key, prefix),
				"entity key %q must not live under listing prefix %q", key, prefix)
		}
	}
}

func TestListingKeysUnderPrefixes(t *testing.T) {
	k := NewKeys(ResourceArticles)

	under := func(key string) bool {
		for _, prefix := range k.ListingPrefixes() {
			if strings.HasPrefix(key, prefix) {
				return true
			}
		}
		return false
	}

	assert.True(t, under(k.Listing(1, 20, "createdAt", "desc", "")))
	assert.True(t, under(k.StatusListing("published", "", "", nil, 1, 21)))
	assert.True(t, under(k.CategoryListing("sports", "published", 1, 12, "createdAt", "desc")))
	assert.True(t, under(k.TagListing("cricket", "published", 1, 9)))
	assert.True(t, under(k.AuthorListing("shrestha", "published", 1, 1)))
}

func TestOnCreateSet(t *testing.T) {
	k := NewKeys(ResourceArticles)

	keys, prefixes := k.OnCreate()
	assert.ElementsMatch(t, []string{k.Trending(), k.Locations()}, keys)
	assert.Equal(t, k.ListingPrefixes(), prefixes)
}

func TestOnUpdateIncludesEntityKeys(t *testing.T) {
	k := NewKeys(ResourceArticles)

	keys, prefixes := k.OnUpdate("65a1")
	require.Equal(t, k.ListingPrefixes(), prefixes)

	for _, want := range []string{
		k.Trending(), k.Locations(),
		k.Detail("65a1"), k.Full("65a1"), k.Views("65a1"),
		k.Shares("65a1"), k.Authors("65a1"), k.Tags("65a1"),
	} {
		assert.Contains(t, keys, want)
	}
}

func TestCounterIncrementsLeaveListingsAlone(t *testing.T) {
	k := NewKeys(ResourceArticles)

	for _, key := range k.OnViewsIncrement("65a1") {
		for _, prefix := range k.ListingPrefixes() {
			assert.False(t, strings.HasPrefix(key, prefix))
		}
	}

	assert.Contains(t, k.OnViewsIncrement("65a1"), k.Views("65a1"))
	assert.Contains(t, k.OnViewsIncrement("65a1"), k.Trending())
	assert.NotContains(t, k.OnViewsIncrement("65a1"), k.Shares("65a1"))

	assert.Contains(t, k.OnSharesIncrement("65a1"), k.Shares("65a1"))
	assert.NotContains(t, k.OnSharesIncrement("65a1"), k.Views("65a1"))
}
