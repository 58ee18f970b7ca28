package posts

import (
	"sort"

	"github.com/adamavenir/scrollback/internal/types"
)

// State holds cached posts and the ordered chunks loaded for each channel.
// A channel with no entry has never been loaded.
type State struct {
	posts    map[string]types.Post
	channels map[string][]types.PostOrderBlock
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		posts:    make(map[string]types.Post),
		channels: make(map[string][]types.PostOrderBlock),
	}
}

// Post returns a cached post.
func (s *State) Post(id string) (types.Post, bool) {
	if id == "" {
		return types.Post{}, false
	}
	post, ok := s.posts[id]
	return post, ok
}

// HasChannel reports whether any chunk list was recorded for the channel,
// including an empty one.
func (s *State) HasChannel(channelID string) bool {
	_, ok := s.channels[channelID]
	return ok
}

// Chunks returns a copy of the channel's chunk list.
func (s *State) Chunks(channelID string) []types.PostOrderBlock {
	blocks, ok := s.channels[channelID]
	if !ok {
		return nil
	}
	out := make([]types.PostOrderBlock, len(blocks))
	for i, block := range blocks {
		out[i] = copyBlock(block)
	}
	return out
}

// SetChunks replaces the channel's chunk list as-is. Used when restoring
// persisted state; callers merging fetched windows use ReceivePosts.
func (s *State) SetChunks(channelID string, blocks []types.PostOrderBlock) {
	next := make([]types.PostOrderBlock, len(blocks))
	for i, block := range blocks {
		next[i] = copyBlock(block)
	}
	s.channels[channelID] = next
}

// Channels returns the ids of all loaded channels, sorted.
func (s *State) Channels() []string {
	ids := make([]string, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddPosts caches posts without touching any chunk.
func (s *State) AddPosts(posts ...types.Post) {
	for _, post := range posts {
		if post.ID == "" {
			continue
		}
		s.posts[post.ID] = post
	}
}

// RemovePost drops a post from the cache and from every chunk of its channel.
func (s *State) RemovePost(id string) {
	post, ok := s.posts[id]
	delete(s.posts, id)
	if !ok {
		return
	}
	blocks, ok := s.channels[post.ChannelID]
	if !ok {
		return
	}
	for i := range blocks {
		blocks[i].Order = removeID(blocks[i].Order, id)
	}
	s.channels[post.ChannelID] = mergeBlocks(blocks, s.posts)
}

func copyBlock(block types.PostOrderBlock) types.PostOrderBlock {
	order := make([]string, len(block.Order))
	copy(order, block.Order)
	return types.PostOrderBlock{Order: order, Recent: block.Recent, Oldest: block.Oldest}
}

func removeID(order []string, id string) []string {
	out := order[:0:0]
	for _, existing := range order {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
