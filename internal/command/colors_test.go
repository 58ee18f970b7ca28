package command

import (
	"testing"

	"github.com/adamavenir/scrollback/internal/posts"
	"github.com/adamavenir/scrollback/internal/types"
	"github.com/charmbracelet/lipgloss"
)

func TestBuildColorMapAssignsDistinctColors(t *testing.T) {
	state := posts.NewState()
	state.AddPosts(
		types.Post{ID: "p1", UserID: "bob", CreateAt: 1},
		types.Post{ID: "p2", UserID: "eve", CreateAt: 2},
		types.Post{ID: "p3", UserID: "bob", CreateAt: 3},
	)

	colors := buildColorMap(state, []string{"p3", "p2", "p1", "date-0"})
	if len(colors) != 2 {
		t.Fatalf("expected two authors, got %d", len(colors))
	}
	if colors["bob"] == colors["eve"] {
		t.Fatal("expected distinct colors for adjacent authors")
	}
	if colorForUser("bob", colors) != colors["bob"] {
		t.Fatal("expected mapped color")
	}
	if colorForUser("zed", nil) != colorForUser("zed", nil) {
		t.Fatal("expected stable fallback color")
	}
}

func TestContrastTextColor(t *testing.T) {
	if got := contrastTextColor(lipgloss.Color("230")); got != lipgloss.Color("16") {
		t.Fatalf("expected dark text on light color, got %s", got)
	}
	if got := contrastTextColor(lipgloss.Color("16")); got != lipgloss.Color("231") {
		t.Fatalf("expected light text on dark color, got %s", got)
	}
	if got := contrastTextColor(lipgloss.Color("#ff0000")); got != lipgloss.Color("231") {
		t.Fatalf("expected default for hex color, got %s", got)
	}
}
