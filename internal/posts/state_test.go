package posts

import (
	"testing"

	"github.com/adamavenir/scrollback/internal/types"
	"github.com/google/go-cmp/cmp"
)

func seedState(t *testing.T, channelID string, times map[string]int64) *State {
	t.Helper()
	state := NewState()
	for id, ts := range times {
		state.AddPosts(types.Post{ID: id, ChannelID: channelID, UserID: "alice", CreateAt: ts})
	}
	return state
}

func TestHasChannelOnlyAfterLoad(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100})
	if state.HasChannel("c1") {
		t.Fatal("expected channel to be unloaded")
	}

	state.ReceivePosts("c1", nil, true, true)
	if !state.HasChannel("c1") {
		t.Fatal("expected empty load to mark channel as loaded")
	}
	recent := state.RecentChunk("c1")
	if recent == nil {
		t.Fatal("expected empty recent chunk")
	}
	if len(recent.Order) != 0 || !recent.Oldest {
		t.Fatalf("unexpected empty chunk: %+v", recent)
	}
}

func TestReceivePostsMergesOverlappingWindows(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{
		"p1": 100, "p2": 200, "p3": 300, "p4": 400, "p5": 500,
	})

	state.ReceivePosts("c1", []string{"p5", "p4", "p3"}, true, false)
	state.ReceivePosts("c1", []string{"p3", "p2", "p1"}, false, true)

	chunks := state.Chunks("c1")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 merged chunk, got %d", len(chunks))
	}
	want := types.PostOrderBlock{Order: []string{"p5", "p4", "p3", "p2", "p1"}, Recent: true, Oldest: true}
	if diff := cmp.Diff(want, chunks[0]); diff != "" {
		t.Fatalf("merged chunk mismatch (-want +got):\n%s", diff)
	}
}

func TestReceivePostsKeepsDisjointWindowsApart(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{
		"p1": 100, "p2": 200, "p4": 400, "p5": 500,
	})

	state.ReceivePosts("c1", []string{"p5", "p4"}, true, false)
	state.ReceivePosts("c1", []string{"p2", "p1"}, false, true)

	chunks := state.Chunks("c1")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Order[0] != "p5" || !chunks[0].Recent {
		t.Fatalf("expected newest chunk first, got %+v", chunks[0])
	}
	if chunks[1].Order[0] != "p2" || !chunks[1].Oldest {
		t.Fatalf("expected oldest chunk last, got %+v", chunks[1])
	}
}

func TestReceivePostsMovesRecentFlag(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{
		"p1": 100, "p2": 200, "p8": 800, "p9": 900,
	})

	state.ReceivePosts("c1", []string{"p2", "p1"}, true, false)
	state.ReceivePosts("c1", []string{"p9", "p8"}, true, false)

	recent := state.RecentChunk("c1")
	if recent == nil || recent.Order[0] != "p9" {
		t.Fatalf("expected newer window to be recent, got %+v", recent)
	}
	recentCount := 0
	for _, chunk := range state.Chunks("c1") {
		if chunk.Recent {
			recentCount++
		}
	}
	if recentCount != 1 {
		t.Fatalf("expected exactly one recent chunk, got %d", recentCount)
	}
}

func TestReceiveNewPost(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100})

	state.ReceiveNewPost(types.Post{ID: "p0", ChannelID: "c1", CreateAt: 50})
	if state.HasChannel("c1") {
		t.Fatal("new post must not create chunks for unloaded channel")
	}
	if _, ok := state.Post("p0"); !ok {
		t.Fatal("expected new post to be cached")
	}

	state.ReceivePosts("c1", []string{"p1"}, true, false)
	state.ReceiveNewPost(types.Post{ID: "p2", ChannelID: "c1", CreateAt: 200})
	state.ReceiveNewPost(types.Post{ID: "p2", ChannelID: "c1", CreateAt: 200})

	recent := state.RecentChunk("c1")
	if diff := cmp.Diff([]string{"p2", "p1"}, recent.Order); diff != "" {
		t.Fatalf("recent order mismatch (-want +got):\n%s", diff)
	}
}

func TestReceiveNewPostKeepsOrder(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p100": 100, "p200": 200, "p300": 300})
	state.ReceivePosts("c1", []string{"p300", "p200", "p100"}, true, true)

	state.ReceiveNewPost(types.Post{ID: "p250", ChannelID: "c1", CreateAt: 250})
	state.ReceiveNewPost(types.Post{ID: "p50", ChannelID: "c1", CreateAt: 50})
	state.ReceiveNewPost(types.Post{ID: "p200b", ChannelID: "c1", CreateAt: 200})

	want := []types.PostOrderBlock{{
		Order:  []string{"p300", "p250", "p200b", "p200", "p100", "p50"},
		Recent: true,
		Oldest: true,
	}}
	if diff := cmp.Diff(want, state.Chunks("c1")); diff != "" {
		t.Fatalf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestReceiveNewPostOutsideLoadedSpan(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100, "p2": 200, "p7": 700, "p8": 800})
	state.ReceivePosts("c1", []string{"p8", "p7"}, true, false)
	state.ReceivePosts("c1", []string{"p2", "p1"}, false, true)

	// Between chunks: cached only.
	state.ReceiveNewPost(types.Post{ID: "p5", ChannelID: "c1", CreateAt: 500})
	// Older than the oldest chunk: joins it.
	state.ReceiveNewPost(types.Post{ID: "p0", ChannelID: "c1", CreateAt: 50})

	want := []types.PostOrderBlock{
		{Order: []string{"p8", "p7"}, Recent: true},
		{Order: []string{"p2", "p1", "p0"}, Oldest: true},
	}
	if diff := cmp.Diff(want, state.Chunks("c1")); diff != "" {
		t.Fatalf("chunks mismatch (-want +got):\n%s", diff)
	}
	if _, ok := state.Post("p5"); !ok {
		t.Fatal("expected post between chunks to be cached")
	}
}

func TestReceiveNewPostOlderThanRecentOnly(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p7": 700, "p8": 800})
	state.ReceivePosts("c1", []string{"p8", "p7"}, true, false)

	state.ReceiveNewPost(types.Post{ID: "p1", ChannelID: "c1", CreateAt: 100})
	if diff := cmp.Diff([]string{"p8", "p7"}, state.RecentChunk("c1").Order); diff != "" {
		t.Fatalf("recent order mismatch (-want +got):\n%s", diff)
	}
}

func TestReceiveNewPostIntoEmptyChannel(t *testing.T) {
	state := NewState()
	state.ReceivePosts("c1", nil, true, true)

	state.ReceiveNewPost(types.Post{ID: "p1", ChannelID: "c1", CreateAt: 100})
	want := []types.PostOrderBlock{{Order: []string{"p1"}, Recent: true, Oldest: true}}
	if diff := cmp.Diff(want, state.Chunks("c1")); diff != "" {
		t.Fatalf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestReceivePostsSameRecentBoundsKeepsOldest(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100, "p2": 200})
	state.ReceivePosts("c1", []string{"p2", "p1"}, true, false)
	state.ReceivePosts("c1", []string{"p2", "p1"}, true, true)

	want := []types.PostOrderBlock{{Order: []string{"p2", "p1"}, Recent: true, Oldest: true}}
	if diff := cmp.Diff(want, state.Chunks("c1")); diff != "" {
		t.Fatalf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestRemovePost(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100, "p2": 200})
	state.ReceivePosts("c1", []string{"p2", "p1"}, true, true)

	state.RemovePost("p2")
	recent := state.RecentChunk("c1")
	if diff := cmp.Diff([]string{"p1"}, recent.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	state.RemovePost("p1")
	if !state.HasChannel("c1") {
		t.Fatal("channel should stay loaded after its posts are removed")
	}
	if recent := state.RecentChunk("c1"); recent == nil || len(recent.Order) != 0 {
		t.Fatalf("expected empty recent chunk, got %+v", recent)
	}
}

func TestChunkAroundPost(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100, "p2": 200, "p5": 500})
	state.ReceivePosts("c1", []string{"p5"}, true, false)
	state.ReceivePosts("c1", []string{"p2", "p1"}, false, false)

	chunk := state.ChunkAroundPost("c1", "p1")
	if chunk == nil || chunk.Order[0] != "p2" {
		t.Fatalf("expected chunk containing p1, got %+v", chunk)
	}
	if state.ChunkAroundPost("c1", "missing") != nil {
		t.Fatal("expected no chunk for unknown post")
	}
	if state.ChunkAroundPost("c2", "p1") != nil {
		t.Fatal("expected no chunk in other channel")
	}
}

func TestUnreadChunk(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{
		"p1": 100, "p2": 200, "p5": 500, "p6": 600,
	})
	state.ReceivePosts("c1", []string{"p6", "p5"}, true, false)
	state.ReceivePosts("c1", []string{"p2", "p1"}, false, true)

	cases := []struct {
		name  string
		ts    int64
		first string
	}{
		{name: "recent chunk reaches back", ts: 550, first: "p6"},
		{name: "oldest chunk starts after boundary", ts: 50, first: "p2"},
		{name: "chunk spanning boundary", ts: 150, first: "p2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunk := state.UnreadChunk("c1", tc.ts)
			if chunk == nil {
				t.Fatalf("expected chunk for ts %d", tc.ts)
			}
			if chunk.Order[0] != tc.first {
				t.Fatalf("expected chunk starting at %s, got %v", tc.first, chunk.Order)
			}
		})
	}

	if chunk := state.UnreadChunk("c1", 300); chunk != nil {
		t.Fatalf("expected no chunk in gap, got %v", chunk.Order)
	}
}

func TestChunksAreCopies(t *testing.T) {
	state := seedState(t, "c1", map[string]int64{"p1": 100})
	state.ReceivePosts("c1", []string{"p1"}, true, true)

	recent := state.RecentChunk("c1")
	recent.Order[0] = "mutated"

	if again := state.RecentChunk("c1"); again.Order[0] != "p1" {
		t.Fatalf("state was mutated through returned chunk: %v", again.Order)
	}
}
