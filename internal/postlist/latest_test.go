package postlist

import (
	"testing"

	"github.com/adamavenir/scrollback/internal/types"
)

type countingLookup struct {
	posts   map[string]types.Post
	lookups int
}

func (c *countingLookup) Post(id string) (types.Post, bool) {
	c.lookups++
	post, ok := c.posts[id]
	return post, ok
}

func TestLatestPostIDSkipsMarkers(t *testing.T) {
	ids := []string{StartOfNewMessages, "date-0", "p3", "p2"}
	if got := LatestPostID(ids); got != "p3" {
		t.Fatalf("expected p3, got %q", got)
	}
	if got := LatestPostID(nil); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestLatestPostCacheMemoizes(t *testing.T) {
	store := &countingLookup{posts: map[string]types.Post{
		"p1": {ID: "p1", CreateAt: 100},
		"p2": {ID: "p2", CreateAt: 200},
		"p9": {ID: "p9", CreateAt: 900},
	}}
	var cache LatestPostCache
	ids := []string{"p2", "p1"}

	if got := cache.LatestPostTimeStamp(store, ids); got != 200 {
		t.Fatalf("expected 200, got %d", got)
	}
	if got := cache.LatestPostTimeStamp(store, ids); got != 200 {
		t.Fatalf("expected cached 200, got %d", got)
	}
	if cache.scans != 1 {
		t.Fatalf("expected a single scan for unchanged list, got %d", cache.scans)
	}

	// Same content through a different slice is still a hit.
	if got := cache.LatestPostTimeStamp(store, []string{"p2", "p1"}); got != 200 || cache.scans != 1 {
		t.Fatalf("expected hit for equal content, got %d after %d scans", got, cache.scans)
	}

	ids[0] = "p9"
	if got := cache.LatestPostTimeStamp(store, ids); got != 900 {
		t.Fatalf("expected 900 after change, got %d", got)
	}
	if cache.scans != 2 {
		t.Fatalf("expected rescan after element change, got %d", cache.scans)
	}
}

func TestLatestPostCacheUnknownPost(t *testing.T) {
	store := &countingLookup{posts: map[string]types.Post{}}
	var cache LatestPostCache
	if got := cache.LatestPostTimeStamp(store, []string{"ghost"}); got != 0 {
		t.Fatalf("expected 0 for unknown post, got %d", got)
	}
	if got := cache.LatestPostTimeStamp(store, nil); got != 0 {
		t.Fatalf("expected 0 for empty list, got %d", got)
	}
}
