package posts

import (
	"slices"
	"sort"

	"github.com/adamavenir/scrollback/internal/types"
)

// ReceivePosts records a loaded window of a channel. The posts must already
// be cached with AddPosts. Chunks that overlap in time are merged, and only
// one chunk per channel keeps the recent flag.
func (s *State) ReceivePosts(channelID string, order []string, recent, oldest bool) {
	existing, loaded := s.channels[channelID]
	if len(order) == 0 && loaded {
		return
	}

	next := make([]types.PostOrderBlock, 0, len(existing)+1)
	for _, block := range existing {
		next = append(next, copyBlock(block))
	}

	if recent {
		for i := range next {
			if !next[i].Recent {
				continue
			}
			if sameBounds(next[i].Order, order) {
				next[i].Oldest = next[i].Oldest || oldest
				s.channels[channelID] = next
				return
			}
			next[i].Recent = false
		}
	}

	incoming := make([]string, len(order))
	copy(incoming, order)
	next = append(next, types.PostOrderBlock{Order: incoming, Recent: recent, Oldest: oldest})

	s.channels[channelID] = mergeBlocks(next, s.posts)
}

// ReceiveNewPost adds a freshly created or imported post. The post joins
// the chunk whose span contains it, or the chunk claiming the boundary it
// lies beyond (newer than the recent chunk, older than the oldest chunk).
// A post falling between chunks, or in a channel that was never loaded, is
// only cached and shows up on the next load.
func (s *State) ReceiveNewPost(post types.Post) {
	s.AddPosts(post)

	blocks, ok := s.channels[post.ChannelID]
	if !ok {
		return
	}
	for i := range blocks {
		if slices.Contains(blocks[i].Order, post.ID) {
			return
		}
	}
	for i := range blocks {
		if s.belongsTo(blocks[i], post) {
			blocks[i].Order = s.insertOrdered(blocks[i].Order, post)
			return
		}
	}
}

func (s *State) belongsTo(block types.PostOrderBlock, post types.Post) bool {
	if len(block.Order) == 0 {
		return block.Recent || block.Oldest
	}
	newest, okNewest := s.posts[block.Order[0]]
	oldest, okOldest := s.posts[block.Order[len(block.Order)-1]]
	if !okNewest || !okOldest {
		return false
	}
	switch {
	case newerThan(post, newest):
		return block.Recent
	case newerThan(oldest, post):
		return block.Oldest
	default:
		return true
	}
}

// insertOrdered places post in a newest-first order.
func (s *State) insertOrdered(order []string, post types.Post) []string {
	at := len(order)
	for i, id := range order {
		if newerThan(post, s.posts[id]) {
			at = i
			break
		}
	}
	return slices.Insert(slices.Clone(order), at, post.ID)
}

// newerThan orders posts newest first, breaking create time ties by id the
// same way the post log does.
func newerThan(a, b types.Post) bool {
	if a.CreateAt != b.CreateAt {
		return a.CreateAt > b.CreateAt
	}
	return a.ID > b.ID
}

func sameBounds(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return a[0] == b[0] && a[len(a)-1] == b[len(b)-1]
}

// mergeBlocks drops empty chunks, sorts by newest post and merges chunks
// whose time spans touch. A channel whose chunks are all empty keeps them.
func mergeBlocks(blocks []types.PostOrderBlock, posts map[string]types.Post) []types.PostOrderBlock {
	nonEmpty := make([]types.PostOrderBlock, 0, len(blocks))
	for _, block := range blocks {
		if len(block.Order) > 0 {
			nonEmpty = append(nonEmpty, block)
		}
	}
	if len(nonEmpty) == 0 {
		return collapseEmpty(blocks)
	}

	startsAt := func(block types.PostOrderBlock) int64 { return posts[block.Order[0]].CreateAt }
	endsAt := func(block types.PostOrderBlock) int64 { return posts[block.Order[len(block.Order)-1]].CreateAt }

	sort.SliceStable(nonEmpty, func(i, j int) bool {
		return startsAt(nonEmpty[i]) > startsAt(nonEmpty[j])
	})

	i := 0
	for i < len(nonEmpty)-1 {
		a, b := nonEmpty[i], nonEmpty[i+1]
		if endsAt(a) <= startsAt(b) {
			nonEmpty[i] = types.PostOrderBlock{
				Order:  mergeOrder(a.Order, b.Order, posts),
				Recent: a.Recent || b.Recent,
				Oldest: a.Oldest || b.Oldest,
			}
			nonEmpty = append(nonEmpty[:i+1], nonEmpty[i+2:]...)
			continue
		}
		i++
	}
	return nonEmpty
}

// collapseEmpty keeps a single empty chunk carrying the union of flags.
func collapseEmpty(blocks []types.PostOrderBlock) []types.PostOrderBlock {
	if len(blocks) == 0 {
		return []types.PostOrderBlock{}
	}
	merged := types.PostOrderBlock{Order: []string{}}
	for _, block := range blocks {
		merged.Recent = merged.Recent || block.Recent
		merged.Oldest = merged.Oldest || block.Oldest
	}
	return []types.PostOrderBlock{merged}
}

// mergeOrder unions two newest-first orders, newest first, without duplicates.
func mergeOrder(left, right []string, posts map[string]types.Post) []string {
	seen := make(map[string]struct{}, len(left)+len(right))
	out := make([]string, 0, len(left)+len(right))
	for _, ids := range [][]string{left, right} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return newerThan(posts[out[i]], posts[out[j]])
	})
	return out
}
