package posts

import "github.com/adamavenir/scrollback/internal/types"

// RecentChunk returns the chunk that touches the newest post, if any.
func (s *State) RecentChunk(channelID string) *types.PostOrderBlock {
	for _, block := range s.channels[channelID] {
		if block.Recent {
			found := copyBlock(block)
			return &found
		}
	}
	return nil
}

// OldestChunk returns the chunk that touches the oldest post, if any.
func (s *State) OldestChunk(channelID string) *types.PostOrderBlock {
	for _, block := range s.channels[channelID] {
		if block.Oldest {
			found := copyBlock(block)
			return &found
		}
	}
	return nil
}

// ChunkAroundPost returns the chunk containing postID.
func (s *State) ChunkAroundPost(channelID, postID string) *types.PostOrderBlock {
	if postID == "" {
		return nil
	}
	for _, block := range s.channels[channelID] {
		for _, id := range block.Order {
			if id == postID {
				found := copyBlock(block)
				return &found
			}
		}
	}
	return nil
}

// ChunkAroundTime returns the chunk whose time span contains ts.
func (s *State) ChunkAroundTime(channelID string, ts int64) *types.PostOrderBlock {
	for _, block := range s.channels[channelID] {
		if len(block.Order) == 0 {
			continue
		}
		newest, okNewest := s.posts[block.Order[0]]
		oldest, okOldest := s.posts[block.Order[len(block.Order)-1]]
		if !okNewest || !okOldest {
			continue
		}
		if ts <= newest.CreateAt && ts >= oldest.CreateAt {
			found := copyBlock(block)
			return &found
		}
	}
	return nil
}

// UnreadChunk returns the chunk to show for an unread boundary at ts.
//
// The recent chunk wins when it is empty or already reaches back to ts.
// Next is the oldest chunk when it starts after ts. Otherwise the chunk
// spanning ts is used.
func (s *State) UnreadChunk(channelID string, ts int64) *types.PostOrderBlock {
	if recent := s.RecentChunk(channelID); recent != nil {
		if len(recent.Order) == 0 {
			return recent
		}
		// Compare against the oldest post only: the newest may have been edited.
		if oldest, ok := s.posts[recent.Order[len(recent.Order)-1]]; ok && oldest.CreateAt <= ts {
			return recent
		}
	}

	if oldestChunk := s.OldestChunk(channelID); oldestChunk != nil && len(oldestChunk.Order) > 0 {
		if oldest, ok := s.posts[oldestChunk.Order[len(oldestChunk.Order)-1]]; ok && oldest.CreateAt >= ts {
			return oldestChunk
		}
	}

	return s.ChunkAroundTime(channelID, ts)
}
