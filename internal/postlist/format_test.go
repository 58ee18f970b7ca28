package postlist

import (
	"testing"
	"time"

	"github.com/adamavenir/scrollback/internal/posts"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/google/go-cmp/cmp"
)

const day = int64(24 * time.Hour / time.Millisecond)

func TestFormatEmpty(t *testing.T) {
	state := posts.NewState()
	if got := Format(state, nil, FormatOptions{}); got != nil {
		t.Fatalf("expected nil for nil input, got %v", got)
	}
	if got := Format(state, []string{}, FormatOptions{}); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestFormatIsIdempotent(t *testing.T) {
	state := posts.NewState()
	state.AddPosts(
		types.Post{ID: "p1", UserID: "bob", CreateAt: 1000},
		types.Post{ID: "p2", UserID: "bob", CreateAt: day + 1000},
		types.Post{ID: "p3", UserID: "bob", CreateAt: day + 5000},
	)
	opts := FormatOptions{LastViewedAt: 2000, IndicateNewMessages: true}

	once := Format(state, []string{"p3", "p2", "p1"}, opts)
	twice := Format(state, once, opts)

	want := []string{
		"p3", "p2", StartOfNewMessages, DateLine(time.UnixMilli(day).UTC()),
		"p1", DateLine(time.UnixMilli(0).UTC()),
	}
	if diff := cmp.Diff(want, once); diff != "" {
		t.Fatalf("first pass mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second pass changed list (-first +second):\n%s", diff)
	}
}

func TestFormatSkipsOwnPostsForNewMessages(t *testing.T) {
	state := posts.NewState()
	state.AddPosts(
		types.Post{ID: "p1", UserID: "bob", CreateAt: 1000},
		types.Post{ID: "p2", UserID: "alice", CreateAt: 2000},
		types.Post{ID: "p3", UserID: "bob", CreateAt: 3000},
	)

	got := Format(state, []string{"p3", "p2", "p1"}, FormatOptions{
		LastViewedAt:        1500,
		CurrentUserID:       "alice",
		IndicateNewMessages: true,
	})
	want := []string{"p3", StartOfNewMessages, "p2", "p1", DateLine(time.UnixMilli(0).UTC())}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatWithoutLastViewed(t *testing.T) {
	state := posts.NewState()
	state.AddPosts(
		types.Post{ID: "p1", UserID: "bob", CreateAt: 1000},
		types.Post{ID: "eph", UserID: "bot", Type: types.PostTypeEphemeral, CreateAt: 1500},
	)

	got := Format(state, []string{"eph", "p1", "unknown"}, FormatOptions{IndicateNewMessages: true})
	want := []string{"p1", DateLine(time.UnixMilli(0).UTC())}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatUsesLocationForDays(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	state := posts.NewState()
	// 03:00 UTC on Jan 2 is still Jan 1 at UTC-5.
	state.AddPosts(
		types.Post{ID: "p1", UserID: "bob", CreateAt: day - 1000},
		types.Post{ID: "p2", UserID: "bob", CreateAt: day + 3*3600*1000},
	)

	got := Format(state, []string{"p2", "p1"}, FormatOptions{Location: loc})
	want := []string{"p2", "p1", DateLine(time.Date(1970, 1, 1, 0, 0, 0, 0, loc))}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkers(t *testing.T) {
	line := DateLine(time.UnixMilli(day).UTC())
	if !IsDateLine(line) || !IsMarker(line) {
		t.Fatalf("expected %q to be a date line", line)
	}
	if ms, ok := DateLineTime(line); !ok || ms != day {
		t.Fatalf("expected %d, got %d (%v)", day, ms, ok)
	}
	if IsDateLine("date-abc") {
		t.Fatal("malformed date line accepted")
	}
	if !IsMarker(StartOfNewMessages) {
		t.Fatal("expected new messages marker")
	}
	if IsMarker("post-abcd1234") {
		t.Fatal("post id reported as marker")
	}
}
