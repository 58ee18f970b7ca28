package postlist

import "slices"

// LatestPostID returns the first real post id of a newest-first list.
func LatestPostID(ids []string) string {
	for _, id := range ids {
		if IsMarker(id) {
			continue
		}
		return id
	}
	return ""
}

// LatestPostCache memoizes LatestPostID on the content of the id list.
// The zero value is ready to use. Not safe for concurrent use.
type LatestPostCache struct {
	ids      []string
	latestID string
	valid    bool
	scans    int
}

// LatestPostTimeStamp returns the create time of the newest post in ids,
// or 0 when it cannot be resolved. An unchanged list reuses the cached id.
func (c *LatestPostCache) LatestPostTimeStamp(store PostLookup, ids []string) int64 {
	if !c.valid || !slices.Equal(c.ids, ids) {
		c.ids = slices.Clone(ids)
		c.latestID = LatestPostID(ids)
		c.valid = true
		c.scans++
	}
	if c.latestID == "" {
		return 0
	}
	post, ok := store.Post(c.latestID)
	if !ok {
		return 0
	}
	return post.CreateAt
}
